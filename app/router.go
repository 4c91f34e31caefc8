// Package app wires the dependencies and the HTTP routes together
package app

import (
	"docdrop/file-api/app/file"
	"docdrop/file-api/app/root"
	"docdrop/file-api/app/user"
	"docdrop/file-api/internal"
	"docdrop/file-api/pkg/middleware"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Limit for the JSON endpoints, uploads get their own from the config
const jsonBodyLimit = 1 << 20

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	if len(d.Config.Host.CorsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.Config.Host.CorsOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.Use(
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 5 << 20

	session := middleware.NewSessionMiddleware(d)
	jsonLimit := middleware.BodySizeLimiter(jsonBodyLimit)
	uploadLimit := middleware.BodySizeLimiter(d.Config.Upload.MaxSize)

	// HEAD /heartbeat			-> Used to check if the server is alive
	router.HEAD("/heartbeat", root.Heartbeat)

	// GET /metrics				-> Prometheus metrics
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// POST /signup				-> Registers a new user and sends the verification link
	router.POST("/signup", jsonLimit, func(c *gin.Context) { user.UserRegister(c, d) })

	// GET /verify/:token			-> Verifies the email of a new user
	router.GET("/verify/:token", func(c *gin.Context) { user.UserVerify(c, d) })

	// POST /login				-> Logs in a user and returns a session token
	router.POST("/login", jsonLimit, func(c *gin.Context) { user.UserLogin(c, d) })

	// POST /upload				-> Stores a new file, operators only
	router.POST("/upload", session, uploadLimit, func(c *gin.Context) { file.FileUpload(c, d) })

	// GET /files				-> Lists every stored file
	router.GET("/files", session, func(c *gin.Context) { file.FileList(c, d) })

	// GET /download/:id			-> Issues a download link, consumers only
	router.GET("/download/:id", session, func(c *gin.Context) { file.FileDownloadLink(c, d) })

	// GET /secure-download/:token		-> Streams the file behind a download link
	router.GET("/secure-download/:token", func(c *gin.Context) { file.FileServe(c, d) })

	return router
}

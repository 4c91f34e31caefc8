package internal

import (
	"docdrop/file-api/config"
	"docdrop/file-api/internal/service"
	"docdrop/file-api/internal/storage"
	"docdrop/file-api/pkg/metrics"
	"docdrop/file-api/pkg/security"

	"gorm.io/gorm"
)

// Deps is everything a handler may need. It is built once at startup and
// shared by all requests.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Hasher   *security.PasswordHasher
	Tokens   *security.TokenService
	Storage  storage.Storage
	Notifier service.Notifier
	Metrics  *metrics.Collector
}

package app

import (
	"context"
	"docdrop/file-api/config"
	"docdrop/file-api/db"
	"docdrop/file-api/internal"
	"docdrop/file-api/internal/service"
	"docdrop/file-api/internal/storage"
	"docdrop/file-api/pkg/metrics"
	"docdrop/file-api/pkg/security"
	"fmt"
)

// NewDeps opens the database, the blob storage and the mail transport
// described by cfg
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	d := &internal.Deps{
		Config:  cfg,
		Hasher:  security.NewPasswordHasher(),
		Metrics: metrics.New(),
	}

	conn, err := db.New(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = conn

	d.Tokens, err = security.NewTokenService(security.TokenOpts{
		Secret:      cfg.Security.Secret,
		VerifyTTL:   cfg.Security.VerifyTTL,
		SessionTTL:  cfg.Security.SessionTTL,
		DownloadTTL: cfg.Security.DownloadTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service, %w", err)
	}

	d.Storage, err = newStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage, %w", err)
	}

	d.Notifier, err = service.NewNotifier(service.MailOpts{
		Driver:       cfg.Mail.Driver,
		From:         cfg.Mail.From,
		Host:         cfg.Mail.Host,
		Port:         cfg.Mail.Port,
		Username:     cfg.Mail.Username,
		Password:     cfg.Mail.Password,
		ResendAPIKey: cfg.Mail.ResendAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notifier, %w", err)
	}

	return d, nil
}

func newStorage(ctx context.Context, c config.StorageConfig) (storage.Storage, error) {
	switch c.Type {
	case "s3":
		return storage.NewS3(ctx, storage.S3Config{
			Bucket:          c.S3.Bucket,
			Region:          c.S3.Region,
			Endpoint:        c.S3.Endpoint,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
		})
	case "local", "":
		return storage.NewLocal(c.Root)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", c.Type)
	}
}

// Package di wires configuration, backend repositories, use cases and the
// HTTP handler together.
package di

import (
	"context"
	"fmt"

	"store-it/internal/application/usecases"
	"store-it/internal/auth"
	"store-it/internal/authz"
	"store-it/internal/database"
	"store-it/internal/domain/repositories"
	"store-it/internal/handler"
	"store-it/internal/infrastructure/config"
	awrepo "store-it/internal/infrastructure/repository/appwrite"
	sqliterepo "store-it/internal/infrastructure/repository/sqlite"
	"store-it/internal/logger"
	"store-it/internal/revalidate"
)

// Container provides app-wide singletons.
type Container struct {
	Config *config.Config
	DB     *database.Database

	// Repositories
	Users    repositories.UserRepository
	Files    repositories.FileRepository
	Storage  repositories.ObjectStorage
	Accounts repositories.AccountService
	Audit    repositories.AuditRepository

	Authorizer *authz.Authorizer
	Hub        *revalidate.Hub
	Sessions   *auth.Sessions

	// Usecases
	AuthUC *usecases.AuthUseCase
	FileUC *usecases.FileUseCase

	Handler *handler.Handler
}

// New opens the activity store, installs the logger on it and builds the
// rest of the graph against the configured backend project.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := database.InitDatabase(ctx, cfg.Database.Database)
	if err != nil {
		return nil, fmt.Errorf("activity store: %w", err)
	}
	logger.InitLogger(db.GetDB())

	c, err := build(cfg, db, awrepo.NewClientFactory(awrepo.ClientConfig(cfg.Appwrite)))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func build(cfg *config.Config, db *database.Database, clients *awrepo.ClientFactory) (*Container, error) {
	ids := awrepo.CollectionsFrom(cfg.Appwrite)
	c := &Container{
		Config:   cfg,
		DB:       db,
		Users:    awrepo.NewUserRepo(clients.Admin(), ids),
		Files:    awrepo.NewFileRepo(clients.Admin(), ids),
		Storage:  awrepo.NewBucketStore(clients.Admin(), ids.BucketID),
		Accounts: awrepo.NewAccountGateway(clients),
		Audit:    sqliterepo.NewAuditRepo(db),
		Hub:      revalidate.NewHub(nil),
	}

	var err error
	if c.Authorizer, err = authz.New(); err != nil {
		return nil, fmt.Errorf("authorizer: %w", err)
	}
	c.Sessions, err = auth.NewSessions(auth.Options{CookieName: cfg.Session.CookieName, Secret: cfg.Session.Secret})
	if err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}

	c.AuthUC = usecases.NewAuthUseCase(c.Accounts, c.Users, cfg.Appwrite.AvatarPlaceholderURL)
	c.FileUC = usecases.NewFileUseCase(c.Files, c.Storage, c.Audit, c.Authorizer, c.Hub, usecases.FileUseCaseConfig{
		MaxFileSize:  cfg.Uploads.MaxFileSize,
		StorageQuota: cfg.Uploads.StorageQuota,
		Concurrency:  cfg.Uploads.Concurrency,
	})

	c.Handler = handler.New(handler.Deps{
		Auth:           c.AuthUC,
		Files:          c.FileUC,
		Sessions:       c.Sessions,
		Hub:            c.Hub,
		Version:        cfg.Application.Version,
		MaxUploadBytes: cfg.Uploads.MaxRequestSize,
		StaticDir:      cfg.Server.StaticDir,
	})
	return c, nil
}

// Close releases the activity store.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	return c.DB.Close()
}

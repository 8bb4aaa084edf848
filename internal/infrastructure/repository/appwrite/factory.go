// Package appwrite implements the domain repositories on top of the backend
// REST client.
package appwrite

import (
	"store-it/internal/appwrite"
	"store-it/internal/infrastructure/config"
)

// ClientFactory hands out admin and per-session backend clients built from
// one configuration.
type ClientFactory struct {
	cfg   appwrite.Config
	admin *appwrite.Client
}

func NewClientFactory(cfg appwrite.Config) *ClientFactory {
	return &ClientFactory{cfg: cfg, admin: appwrite.NewAdminClient(cfg)}
}

// ClientConfig adapts the application config section to the client config.
func ClientConfig(c config.AppwriteConfig) appwrite.Config {
	return appwrite.Config{
		Endpoint:  c.Endpoint,
		ProjectID: c.ProjectID,
		APIKey:    c.APIKey,
		Timeout:   c.RequestTimeout,
	}
}

// Admin returns the shared server-key client.
func (f *ClientFactory) Admin() *appwrite.Client { return f.admin }

// Session returns a client acting as the session owning secret.
func (f *ClientFactory) Session(secret string) (*appwrite.Client, error) {
	return appwrite.NewSessionClient(f.cfg, secret)
}

// Collections names the database objects the repositories address.
type Collections struct {
	DatabaseID        string
	UsersCollectionID string
	FilesCollectionID string
	BucketID          string
}

func CollectionsFrom(c config.AppwriteConfig) Collections {
	return Collections{
		DatabaseID:        c.DatabaseID,
		UsersCollectionID: c.UsersCollectionID,
		FilesCollectionID: c.FilesCollectionID,
		BucketID:          c.BucketID,
	}
}

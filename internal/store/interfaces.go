package store

import (
	"context"
	"errors"
	"updatescan/internal/models"
)

// ContentKind names one of the two stored snapshots of a page.
type ContentKind string

const (
	ContentOld ContentKind = "old"
	ContentNew ContentKind = "new"
)

var (
	ErrPageNotFound   = errors.New("page not found")
	ErrFolderNotFound = errors.New("folder not found")
	ErrPageExists     = errors.New("page already exists")
)

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

// PageStoreInterface persists the page collection and page content.
// Load always returns a collection the caller may mutate freely. Content
// can only be saved for a page that exists; SaveContent on a deleted page
// returns ErrPageNotFound and stores nothing.
type PageStoreInterface interface {
	Load(ctx context.Context) (*models.Collection, error)
	UpdateAutoscanTimes(ctx context.Context, updates []models.TimingUpdate) error
	SavePage(ctx context.Context, page *models.Page) error
	// UpdatePage applies update to the currently stored page under the store's
	// write lock and returns the saved result. Concurrent writers never lose
	// each other's fields.
	UpdatePage(ctx context.Context, id string, update func(page *models.Page)) (*models.Page, error)
	AddPage(ctx context.Context, page *models.Page, parentID string) error
	DeletePage(ctx context.Context, id string) error
	LoadContent(ctx context.Context, id string, kind ContentKind) (string, error)
	SaveContent(ctx context.Context, id string, kind ContentKind, content string) error
	Close() error
}

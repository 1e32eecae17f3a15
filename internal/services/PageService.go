package services

import (
	"context"
	"errors"
	"fmt"
	"updatescan/internal/fuzzy"
	"updatescan/internal/models"
	"updatescan/internal/providers"
	"updatescan/internal/scan"
	"updatescan/internal/store"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

var (
	ErrInvalidPage    = errors.New("invalid page")
	ErrScanInProgress = errors.New("scan already in progress")
)

type PageServiceInterface interface {
	ListPages(ctx context.Context) ([]*models.Page, error)
	ListChangedPages(ctx context.Context) ([]*models.Page, error)
	AddPage(ctx context.Context, input *models.PageInput) (*models.Page, error)
	ViewPage(ctx context.Context, id string) (*models.Page, error)
	DeletePage(ctx context.Context, id string) error
	GetContent(ctx context.Context, id string) (*models.PageContent, error)
	ScanAll(ctx context.Context) (int, error)
	CountByState(ctx context.Context) (map[models.PageState]int, error)
	IsScanning() bool
}

type PageService struct {
	store    store.PageStoreInterface
	scanner  scan.ScannerInterface
	logger   providers.Logger
	scanning atomic.Bool
}

func (ps *PageService) ListPages(ctx context.Context) ([]*models.Page, error) {
	collection, err := ps.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return collection.GetPageList(), nil
}

func (ps *PageService) ListChangedPages(ctx context.Context) ([]*models.Page, error) {
	collection, err := ps.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	changed := collection.GetChangedPageList()
	if changed == nil {
		changed = []*models.Page{}
	}
	return changed, nil
}

func (ps *PageService) AddPage(ctx context.Context, input *models.PageInput) (*models.Page, error) {
	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPage, err)
	}

	page := models.NewPage(uuid.NewString(), input.Title, input.URL)
	page.ScanRateMinutes = input.ScanRateMinutes
	page.IgnoreNumbers = input.IgnoreNumbers
	if input.ContentMode != "" {
		page.ContentMode = models.ContentMode(input.ContentMode)
	}
	if input.ChangeThreshold != nil {
		if err := fuzzy.New(*input.ChangeThreshold).Validate(); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidPage, err)
		}
		page.ChangeThreshold = *input.ChangeThreshold
	}

	parent := input.Parent
	if parent == "" {
		parent = models.RootFolderID
	}
	if err := ps.store.AddPage(ctx, page, parent); err != nil {
		return nil, err
	}
	ps.logger.Infof(providers.TypePost, "Added page %s (%s)", page.ID, page.URL)
	return page, nil
}

// ViewPage acknowledges a detected change so the page no longer counts as
// changed.
func (ps *PageService) ViewPage(ctx context.Context, id string) (*models.Page, error) {
	return ps.store.UpdatePage(ctx, id, func(page *models.Page) {
		if page.IsChanged() {
			page.State = models.StateNoChange
		}
	})
}

func (ps *PageService) DeletePage(ctx context.Context, id string) error {
	if err := ps.store.DeletePage(ctx, id); err != nil {
		return err
	}
	ps.logger.Infof(providers.TypePost, "Deleted page %s", id)
	return nil
}

func (ps *PageService) GetContent(ctx context.Context, id string) (*models.PageContent, error) {
	page, err := ps.getPage(ctx, id)
	if err != nil {
		return nil, err
	}
	oldContent, err := ps.store.LoadContent(ctx, id, store.ContentOld)
	if err != nil {
		return nil, err
	}
	newContent, err := ps.store.LoadContent(ctx, id, store.ContentNew)
	if err != nil {
		return nil, err
	}
	return &models.PageContent{Page: page, Old: oldContent, New: newContent}, nil
}

// ScanAll scans every page regardless of its autoscan rate. Only one manual
// scan runs at a time.
func (ps *PageService) ScanAll(ctx context.Context) (int, error) {
	if !ps.scanning.CompareAndSwap(false, true) {
		return 0, ErrScanInProgress
	}
	defer ps.scanning.Store(false)

	pages, err := ps.ListPages(ctx)
	if err != nil {
		return 0, err
	}
	ps.logger.Infof(providers.TypeScan, "Manual scan of %d pages", len(pages))
	return ps.scanner.Scan(ctx, pages)
}

func (ps *PageService) CountByState(ctx context.Context) (map[models.PageState]int, error) {
	collection, err := ps.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return collection.CountByState(), nil
}

func (ps *PageService) IsScanning() bool {
	return ps.scanning.Load()
}

func (ps *PageService) getPage(ctx context.Context, id string) (*models.Page, error) {
	collection, err := ps.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	page, ok := collection.GetPage(id)
	if !ok {
		return nil, store.ErrPageNotFound
	}
	return page, nil
}

func NewPageService(pageStore store.PageStoreInterface, scanner scan.ScannerInterface, logger providers.Logger) PageServiceInterface {
	return &PageService{
		store:   pageStore,
		scanner: scanner,
		logger:  logger,
	}
}

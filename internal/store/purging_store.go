package store

import (
	"context"
	"updatescan/internal/models"
	"updatescan/internal/providers"
)

// purgingStore drops cached page listings after every successful write to
// the collection, whichever component made it. Content writes leave the
// listings untouched.
type purgingStore struct {
	PageStoreInterface
	cache providers.CacheProviderInterface
}

// WithListingPurge wraps inner so that collection writes purge cache.
func WithListingPurge(inner PageStoreInterface, cache providers.CacheProviderInterface) PageStoreInterface {
	return &purgingStore{PageStoreInterface: inner, cache: cache}
}

func (s *purgingStore) purgeOnSuccess(err error) error {
	if err == nil {
		s.cache.Purge()
	}
	return err
}

func (s *purgingStore) UpdateAutoscanTimes(ctx context.Context, updates []models.TimingUpdate) error {
	return s.purgeOnSuccess(s.PageStoreInterface.UpdateAutoscanTimes(ctx, updates))
}

func (s *purgingStore) SavePage(ctx context.Context, page *models.Page) error {
	return s.purgeOnSuccess(s.PageStoreInterface.SavePage(ctx, page))
}

func (s *purgingStore) UpdatePage(ctx context.Context, id string, update func(page *models.Page)) (*models.Page, error) {
	page, err := s.PageStoreInterface.UpdatePage(ctx, id, update)
	return page, s.purgeOnSuccess(err)
}

func (s *purgingStore) AddPage(ctx context.Context, page *models.Page, parentID string) error {
	return s.purgeOnSuccess(s.PageStoreInterface.AddPage(ctx, page, parentID))
}

func (s *purgingStore) DeletePage(ctx context.Context, id string) error {
	return s.purgeOnSuccess(s.PageStoreInterface.DeletePage(ctx, id))
}

package scan

import (
	"context"
	"errors"
	"updatescan/internal/fuzzy"
	"updatescan/internal/models"
	"updatescan/internal/providers"
	"updatescan/internal/store"
	"updatescan/internal/structures"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

// ScannerInterface fetches and compares a batch of pages and returns how many
// of them changed.
type ScannerInterface interface {
	Scan(ctx context.Context, pages []*models.Page) (int, error)
}

type Scanner struct {
	fetcher     Fetcher
	store       store.PageStoreInterface
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	clock       providers.Clock
	concurrency int
}

func NewScanner(conf *structures.Config, fetcher Fetcher, pageStore store.PageStoreInterface, logger providers.Logger, metrics providers.MetricsProviderInterface, clock providers.Clock) ScannerInterface {
	return &Scanner{
		fetcher:     fetcher,
		store:       pageStore,
		logger:      logger,
		metrics:     metrics,
		clock:       clock,
		concurrency: max(conf.Scanner.Concurrency, 1),
	}
}

// Scan updates every page in place and persists it. A page that cannot be
// fetched is marked as errored and does not fail the batch, and a page
// deleted while the batch runs is skipped. Store failures fail the batch.
func (s *Scanner) Scan(ctx context.Context, pages []*models.Page) (int, error) {
	var changes atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, page := range pages {
		g.Go(func() error {
			changed, err := s.scanPage(gctx, page)
			if errors.Is(err, store.ErrPageNotFound) {
				s.logger.Infof(providers.TypeScan, "Page %s was deleted during the scan, skipping it", page.ID)
				return nil
			}
			if err != nil {
				return err
			}
			if changed {
				changes.Add(1)
			}
			return nil
		})
	}
	err := g.Wait()

	count := int(changes.Load())
	s.metrics.AddPagesScanned(len(pages))
	s.metrics.AddChangesDetected(count)
	return count, err
}

type verdict int

const (
	verdictFirstScan verdict = iota
	verdictSame
	verdictChanged
)

func (s *Scanner) scanPage(ctx context.Context, page *models.Page) (bool, error) {
	body, err := s.fetcher.Fetch(ctx, page.URL)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, s.markError(ctx, page, err)
	}

	text, err := Extract(string(body), page.URL, page.ContentMode, page.IgnoreNumbers)
	if err != nil {
		return false, s.markError(ctx, page, err)
	}

	prev, err := s.store.LoadContent(ctx, page.ID, store.ContentNew)
	if err != nil {
		return false, err
	}

	v := verdictChanged
	switch {
	case page.NewScanTime == nil:
		s.logger.Debugf(providers.TypeScan, "First scan of %s", page.URL)
		v = verdictFirstScan
	case fuzzy.IsEquivalent(prev, text, page.ChangeThreshold):
		v = verdictSame
	default:
		s.logger.Infof(providers.TypeScan, "Major change detected on %s", page.URL)
		if err := s.store.SaveContent(ctx, page.ID, store.ContentOld, prev); err != nil {
			return false, err
		}
	}
	if err := s.store.SaveContent(ctx, page.ID, store.ContentNew, text); err != nil {
		return false, err
	}

	now := s.clock().UnixMilli()
	// Applied to the stored page, not the batch copy, so a change the user
	// acknowledged while this page was being fetched stays acknowledged.
	saved, err := s.store.UpdatePage(ctx, page.ID, func(current *models.Page) {
		current.ErrorMessage = ""
		switch v {
		case verdictChanged:
			current.OldScanTime = current.NewScanTime
			current.State = models.StateChanged
		case verdictSame:
			if current.State != models.StateChanged {
				current.State = models.StateNoChange
			}
		default:
			current.State = models.StateNoChange
		}
		current.NewScanTime = &now
	})
	if err != nil {
		return false, err
	}
	*page = *saved
	return v == verdictChanged, nil
}

func (s *Scanner) markError(ctx context.Context, page *models.Page, cause error) error {
	s.logger.Warnf(providers.TypeScan, "Scan of %s failed: %s", page.URL, cause)
	saved, err := s.store.UpdatePage(ctx, page.ID, func(current *models.Page) {
		current.State = models.StateError
		current.ErrorMessage = cause.Error()
	})
	if err != nil {
		return err
	}
	*page = *saved
	return nil
}

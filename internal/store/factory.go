package store

import (
	"fmt"
	"updatescan/internal/providers"
	"updatescan/internal/structures"
)

// NewPageStore opens the backend selected by store.driver. Writes through
// the returned store purge the cached page listings.
func NewPageStore(conf *structures.Config, logger providers.Logger, cache providers.CacheProviderInterface) (PageStoreInterface, error) {
	backend, err := openBackend(conf, logger)
	if err != nil {
		return nil, err
	}
	return WithListingPurge(backend, cache), nil
}

func openBackend(conf *structures.Config, logger providers.Logger) (PageStoreInterface, error) {
	switch conf.Store.Driver {
	case "sqlite":
		logger.Infof(providers.TypeApp, "Using sqlite page store at %s", conf.Store.FilePath)
		return NewSQLiteStore(conf.Store.FilePath)
	case "file", "":
		compressor, err := NewZstdCompressor()
		if err != nil {
			return nil, err
		}
		logger.Infof(providers.TypeApp, "Using file page store at %s", conf.Store.FilePath)
		return NewFileStore(conf.Store.FilePath, conf.Store.ContentDir, compressor, logger)
	default:
		return nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}

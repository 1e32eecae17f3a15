package controllers

import (
	"errors"
	"net/http"
	"updatescan/internal/models"
	"updatescan/internal/providers"
	"updatescan/internal/services"
	"updatescan/internal/store"

	json "github.com/goccy/go-json"
)

const maxRequestBodySize = 1 << 20 // 1 MB

const (
	cacheKeyPages   = "pages"
	cacheKeyChanged = "pages:changed"
)

type ApiController struct {
	logger  providers.Logger
	service services.PageServiceInterface
	cache   providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.PageServiceInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:  logger,
		service: service,
		cache:   cache,
	}
}

type scanResponse struct {
	Changes int `json:"changes"`
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.writeError(w, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func (ac *ApiController) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrPageNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case errors.Is(err, services.ErrInvalidPage), errors.Is(err, store.ErrFolderNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrPageExists), errors.Is(err, services.ErrScanInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		ac.logger.Errorf(providers.TypeApp, "Request failed: %s", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func pageID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return "", false
	}
	return id, true
}

func (ac *ApiController) GetPages(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyPages, func() (any, error) {
		return ac.service.ListPages(r.Context())
	})
}

func (ac *ApiController) GetChangedPages(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, cacheKeyChanged, func() (any, error) {
		return ac.service.ListChangedPages(r.Context())
	})
}

func (ac *ApiController) GetContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(w, r)
	if !ok {
		return
	}
	content, err := ac.service.GetContent(r.Context(), id)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, content)
}

func (ac *ApiController) AddPage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	var payload models.PageInput
	err := json.NewDecoder(r.Body).Decode(&payload)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	page, err := ac.service.AddPage(r.Context(), &payload)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.cache.Purge()
	ac.writeJSON(w, http.StatusCreated, page)
}

func (ac *ApiController) ViewPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(w, r)
	if !ok {
		return
	}
	page, err := ac.service.ViewPage(r.Context(), id)
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.cache.Purge()
	ac.writeJSON(w, http.StatusOK, page)
}

func (ac *ApiController) DeletePage(w http.ResponseWriter, r *http.Request) {
	id, ok := pageID(w, r)
	if !ok {
		return
	}
	if err := ac.service.DeletePage(r.Context(), id); err != nil {
		ac.writeError(w, err)
		return
	}
	ac.cache.Purge()
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ScanAll(w http.ResponseWriter, r *http.Request) {
	n, err := ac.service.ScanAll(r.Context())
	ac.cache.Purge()
	if err != nil {
		ac.writeError(w, err)
		return
	}
	ac.writeJSON(w, http.StatusOK, scanResponse{Changes: n})
}

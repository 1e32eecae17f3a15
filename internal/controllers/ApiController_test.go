package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"updatescan/internal/models"
	"updatescan/internal/services"
	"updatescan/internal/store"
	"updatescan/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to controller tests) ---

type mockService struct {
	pages     []*models.Page
	changed   []*models.Page
	listCalls int
	added     []*models.PageInput
	addErr    error
	viewed    []string
	viewErr   error
	deleted   []string
	deleteErr error
	content   *models.PageContent
	scanCount int
	scanErr   error
	scanning  bool
	counts    map[models.PageState]int
	countErr  error
}

func (m *mockService) ListPages(context.Context) ([]*models.Page, error) {
	m.listCalls++
	return m.pages, nil
}
func (m *mockService) ListChangedPages(context.Context) ([]*models.Page, error) {
	return m.changed, nil
}
func (m *mockService) AddPage(_ context.Context, in *models.PageInput) (*models.Page, error) {
	m.added = append(m.added, in)
	if m.addErr != nil {
		return nil, m.addErr
	}
	return models.NewPage("new-id", in.Title, in.URL), nil
}
func (m *mockService) ViewPage(_ context.Context, id string) (*models.Page, error) {
	m.viewed = append(m.viewed, id)
	if m.viewErr != nil {
		return nil, m.viewErr
	}
	p := models.NewPage(id, id, "https://example.com")
	p.State = models.StateNoChange
	return p, nil
}
func (m *mockService) DeletePage(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.deleteErr
}
func (m *mockService) GetContent(_ context.Context, id string) (*models.PageContent, error) {
	if m.content == nil {
		return nil, store.ErrPageNotFound
	}
	return m.content, nil
}
func (m *mockService) ScanAll(context.Context) (int, error) { return m.scanCount, m.scanErr }
func (m *mockService) CountByState(context.Context) (map[models.PageState]int, error) {
	return m.counts, m.countErr
}
func (m *mockService) IsScanning() bool { return m.scanning }

// --- helpers ---

func newTestController(svc *mockService, cache *testutil.MockCache) *ApiController {
	return NewApiController(&testutil.MockLogger{}, svc, cache)
}

func do(handler http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

// --- listing ---

func TestGetPages_ReturnsPagesAndCaches(t *testing.T) {
	svc := &mockService{pages: []*models.Page{models.NewPage("a", "A", "https://a.example.com")}}
	cache := testutil.NewMockCache()
	ac := newTestController(svc, cache)

	rr := do(ac.GetPages, http.MethodGet, "/pages", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var pages []models.Page
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pages))
	require.Len(t, pages, 1)
	assert.Equal(t, "a", pages[0].ID)

	rr = do(ac.GetPages, http.MethodGet, "/pages", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, svc.listCalls, "second request should be served from cache")
	assert.Contains(t, cache.Data, cacheKeyPages)
}

func TestGetChangedPages(t *testing.T) {
	p := models.NewPage("b", "B", "https://b.example.com")
	p.State = models.StateChanged
	ac := newTestController(&mockService{changed: []*models.Page{p}}, testutil.NewMockCache())

	rr := do(ac.GetChangedPages, http.MethodGet, "/pages/changed", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"state":"changed"`)
}

func TestGetContent(t *testing.T) {
	svc := &mockService{content: &models.PageContent{Page: models.NewPage("a", "A", "https://a"), Old: "x", New: "y"}}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := do(ac.GetContent, http.MethodGet, "/pages/content?id=a", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var content models.PageContent
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &content))
	assert.Equal(t, "x", content.Old)
	assert.Equal(t, "y", content.New)
}

func TestGetContent_MissingID(t *testing.T) {
	ac := newTestController(&mockService{}, testutil.NewMockCache())

	rr := do(ac.GetContent, http.MethodGet, "/pages/content", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetContent_NotFound(t *testing.T) {
	ac := newTestController(&mockService{}, testutil.NewMockCache())

	rr := do(ac.GetContent, http.MethodGet, "/pages/content?id=zzz", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// --- mutations ---

func TestAddPage_ValidPayload(t *testing.T) {
	svc := &mockService{}
	cache := testutil.NewMockCache()
	cache.Set(cacheKeyPages, []byte("stale"))
	ac := newTestController(svc, cache)

	rr := do(ac.AddPage, http.MethodPost, "/pages", `{"title":"News","url":"https://news.example.com","scanRateMinutes":15,"changeThreshold":0}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, svc.added, 1)
	assert.Equal(t, "News", svc.added[0].Title)
	assert.Equal(t, 15, svc.added[0].ScanRateMinutes)
	require.NotNil(t, svc.added[0].ChangeThreshold)
	assert.Equal(t, 0, *svc.added[0].ChangeThreshold)
	assert.Empty(t, cache.Data, "mutations purge the cache")
}

func TestAddPage_InvalidJSON(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := do(ac.AddPage, http.MethodPost, "/pages", `{not json`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.added)
}

func TestAddPage_BodyTooLarge(t *testing.T) {
	ac := newTestController(&mockService{}, testutil.NewMockCache())
	big := `{"title":"` + strings.Repeat("a", maxRequestBodySize) + `"}`

	rr := do(ac.AddPage, http.MethodPost, "/pages", big)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAddPage_ErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{services.ErrInvalidPage, http.StatusBadRequest},
		{store.ErrFolderNotFound, http.StatusBadRequest},
		{store.ErrPageExists, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			ac := newTestController(&mockService{addErr: tc.err}, testutil.NewMockCache())
			rr := do(ac.AddPage, http.MethodPost, "/pages", `{"title":"A","url":"https://a.example.com"}`)
			assert.Equal(t, tc.code, rr.Code)
		})
	}
}

func TestViewPage(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := do(ac.ViewPage, http.MethodPost, "/pages/view?id=a", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"a"}, svc.viewed)
	assert.Contains(t, rr.Body.String(), `"state":"no_change"`)
}

func TestViewPage_NotFound(t *testing.T) {
	ac := newTestController(&mockService{viewErr: store.ErrPageNotFound}, testutil.NewMockCache())

	rr := do(ac.ViewPage, http.MethodPost, "/pages/view?id=a", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeletePage(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := do(ac.DeletePage, http.MethodPost, "/pages/delete?id=a", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{"a"}, svc.deleted)
}

func TestDeletePage_MissingID(t *testing.T) {
	svc := &mockService{}
	ac := newTestController(svc, testutil.NewMockCache())

	rr := do(ac.DeletePage, http.MethodPost, "/pages/delete", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.deleted)
}

func TestScanAll(t *testing.T) {
	ac := newTestController(&mockService{scanCount: 3}, testutil.NewMockCache())

	rr := do(ac.ScanAll, http.MethodPost, "/scan", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"changes":3}`, rr.Body.String())
}

func TestScanAll_InProgress(t *testing.T) {
	ac := newTestController(&mockService{scanErr: services.ErrScanInProgress}, testutil.NewMockCache())

	rr := do(ac.ScanAll, http.MethodPost, "/scan", "")
	assert.Equal(t, http.StatusConflict, rr.Code)
}

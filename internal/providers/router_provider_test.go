package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(name))
	})
}

func pageRoutes() RouterProviderInterface {
	rp := NewRouterProvider()
	rp.Get("/pages", namedHandler("list"))
	rp.Get("/pages/changed", namedHandler("changed"))
	rp.Post("/pages/add", namedHandler("add"))
	rp.Post("/scan", namedHandler("scan"))
	return rp
}

func TestRouterProvider_RecordsRoutesInOrder(t *testing.T) {
	routes := pageRoutes().GetRoutes()

	require.Len(t, routes, 4)
	expected := []struct{ method, url string }{
		{http.MethodGet, "/pages"},
		{http.MethodGet, "/pages/changed"},
		{http.MethodPost, "/pages/add"},
		{http.MethodPost, "/scan"},
	}
	for i, e := range expected {
		assert.Equal(t, e.method, routes[i].Method)
		assert.Equal(t, e.url, routes[i].Url)
	}
}

func TestRouterProvider_MountDispatchesByMethod(t *testing.T) {
	mux := http.NewServeMux()
	pageRoutes().Mount(mux)

	tests := []struct {
		name   string
		method string
		url    string
		status int
		body   string
		allow  string
	}{
		{"list", http.MethodGet, "/pages", http.StatusOK, "list", ""},
		{"changed", http.MethodGet, "/pages/changed", http.StatusOK, "changed", ""},
		{"add", http.MethodPost, "/pages/add", http.StatusOK, "add", ""},
		{"scan", http.MethodPost, "/scan", http.StatusOK, "scan", ""},
		{"post to read route", http.MethodPost, "/pages", http.StatusMethodNotAllowed, "", http.MethodGet},
		{"get to write route", http.MethodGet, "/scan", http.StatusMethodNotAllowed, "", http.MethodPost},
		{"unknown path", http.MethodGet, "/folders", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.url, nil))

			assert.Equal(t, tt.status, rr.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rr.Body.String())
			}
			assert.Equal(t, tt.allow, rr.Header().Get("Allow"))
		})
	}
}

func TestMethodHandler(t *testing.T) {
	handler := methodHandler(http.MethodDelete, namedHandler("gone"))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/pages", nil))
	assert.Equal(t, "gone", rr.Body.String())

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/pages", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodDelete, rr.Header().Get("Allow"))
}

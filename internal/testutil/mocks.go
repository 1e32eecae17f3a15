package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"
	"updatescan/internal/models"
	"updatescan/internal/providers"
	"updatescan/internal/store"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// Count returns how many entries were logged at the given level.
func (m *MockLogger) Count(level string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, l := range m.Logs {
		if l.Level == level {
			n++
		}
	}
	return n
}

// MockMetrics implements providers.MetricsProviderInterface.
type MockMetrics struct {
	mu            sync.Mutex
	Requests      map[string]int
	CacheHits     int
	CacheMisses   int
	CachePurges   int
	Cycles        map[string]int
	PagesScanned  int
	Changes       int
	Notifications int
	PagesTotal    map[string]int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{
		Requests:   make(map[string]int),
		Cycles:     make(map[string]int),
		PagesTotal: make(map[string]int),
	}
}

func (m *MockMetrics) IncRequestsTotal(endpoint string, status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests[fmt.Sprintf("%s:%d", endpoint, status)]++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) IncCachePurges() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CachePurges++
}

func (m *MockMetrics) IncCyclesTotal(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cycles[result]++
}

func (m *MockMetrics) ObserveCycleDuration(_ time.Duration) {}

func (m *MockMetrics) AddPagesScanned(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesScanned += count
}

func (m *MockMetrics) AddChangesDetected(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Changes += count
}

func (m *MockMetrics) AddNotifications(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications += count
}

func (m *MockMetrics) SetPagesTotal(state string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PagesTotal[state] = count
}

// MockStore implements store.PageStoreInterface over an in-memory collection.
// Calls records the operation names in order.
type MockStore struct {
	mu         sync.Mutex
	Collection *models.Collection
	Content    map[string]string
	Calls      []string
	Updates    [][]models.TimingUpdate

	LoadErr   error
	UpdateErr error
	SaveErr   error
}

func NewMockStore(pages ...*models.Page) *MockStore {
	c := models.NewCollection()
	for _, p := range pages {
		c.Pages[p.ID] = p.Clone()
		root := c.Folders[models.RootFolderID]
		root.Children = append(root.Children, p.ID)
	}
	return &MockStore{Collection: c, Content: make(map[string]string)}
}

func (m *MockStore) call(name string) {
	m.Calls = append(m.Calls, name)
}

func (m *MockStore) Load(_ context.Context) (*models.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("load")
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Collection.Clone(), nil
}

func (m *MockStore) UpdateAutoscanTimes(_ context.Context, updates []models.TimingUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("update")
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.Updates = append(m.Updates, updates)
	for _, u := range updates {
		if p, ok := m.Collection.Pages[u.PageID]; ok {
			p.SetLastAutoscanTime(u.LastAutoscanTime)
		}
	}
	return nil
}

func (m *MockStore) SavePage(_ context.Context, page *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("save:" + page.ID)
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, ok := m.Collection.Pages[page.ID]; !ok {
		return store.ErrPageNotFound
	}
	m.Collection.Pages[page.ID] = page.Clone()
	return nil
}

func (m *MockStore) UpdatePage(_ context.Context, id string, update func(page *models.Page)) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("save:" + id)
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	current, ok := m.Collection.Pages[id]
	if !ok {
		return nil, store.ErrPageNotFound
	}
	next := current.Clone()
	update(next)
	next.ID = id
	m.Collection.Pages[id] = next
	return next.Clone(), nil
}

func (m *MockStore) AddPage(_ context.Context, page *models.Page, parentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("add:" + page.ID)
	if _, ok := m.Collection.Pages[page.ID]; ok {
		return store.ErrPageExists
	}
	folder, ok := m.Collection.Folders[parentID]
	if !ok {
		return store.ErrFolderNotFound
	}
	m.Collection.Pages[page.ID] = page.Clone()
	folder.Children = append(folder.Children, page.ID)
	return nil
}

func (m *MockStore) DeletePage(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.call("delete:" + id)
	if _, ok := m.Collection.Pages[id]; !ok {
		return store.ErrPageNotFound
	}
	delete(m.Collection.Pages, id)
	delete(m.Content, id+"."+string(store.ContentOld))
	delete(m.Content, id+"."+string(store.ContentNew))
	for _, f := range m.Collection.Folders {
		for i, child := range f.Children {
			if child == id {
				f.Children = append(f.Children[:i], f.Children[i+1:]...)
				break
			}
		}
	}
	return nil
}

func (m *MockStore) LoadContent(_ context.Context, id string, kind store.ContentKind) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Content[id+"."+string(kind)], nil
}

func (m *MockStore) SaveContent(_ context.Context, id string, kind store.ContentKind, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	if _, ok := m.Collection.Pages[id]; !ok {
		return store.ErrPageNotFound
	}
	m.Content[id+"."+string(kind)] = content
	return nil
}

func (m *MockStore) Close() error { return nil }

// Page returns a copy of the stored page.
func (m *MockStore) Page(id string) *models.Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Collection.Pages[id]
	if !ok {
		return nil
	}
	return p.Clone()
}

// MockScanner implements scan.ScannerInterface.
type MockScanner struct {
	mu     sync.Mutex
	Calls  [][]*models.Page
	ScanFn func(ctx context.Context, pages []*models.Page) (int, error)
}

func (m *MockScanner) Scan(ctx context.Context, pages []*models.Page) (int, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, pages)
	fn := m.ScanFn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, pages)
	}
	return 0, nil
}

func (m *MockScanner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// MockNotifier implements notify.NotifierInterface.
type MockNotifier struct {
	mu      sync.Mutex
	Counts  []int
	Waits   int
	WaitErr error
}

func (m *MockNotifier) Wait(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Waits++
	return m.WaitErr
}

func (m *MockNotifier) ShowNotification(_ context.Context, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Counts = append(m.Counts, count)
}

// MockSettings implements providers.SettingsProviderInterface.
type MockSettings struct {
	Values map[string]any
	Err    error
}

func (m *MockSettings) LoadSingleSetting(_ context.Context, name string) (any, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	v, ok := m.Values[name]
	if !ok {
		return nil, providers.ErrUnknownSetting
	}
	return v, nil
}

// MockFetcher implements scan.Fetcher with canned bodies per url.
// OnFetch, when set, runs before the body is returned.
type MockFetcher struct {
	mu      sync.Mutex
	Bodies  map[string]string
	Errs    map[string]error
	Calls   []string
	OnFetch func(url string)
}

func (m *MockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, url)
	err, failed := m.Errs[url]
	body := m.Bodies[url]
	hook := m.OnFetch
	m.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	if failed {
		return nil, err
	}
	return []byte(body), nil
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Data, key)
}

func (m *MockCache) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data = make(map[string][]byte)
}

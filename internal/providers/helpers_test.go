package providers

import "time"

// local mocks to avoid an import cycle with testutil

type testLogger struct {
	warnings []string
}

func (m *testLogger) Errorf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *testLogger) Warnf(_ TypeEnum, format string, _ ...interface{}) {
	m.warnings = append(m.warnings, format)
}
func (m *testLogger) Debugf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *testLogger) Infof(_ TypeEnum, _ string, _ ...interface{})  {}
func (m *testLogger) Fatalf(_ TypeEnum, _ string, _ ...interface{}) {}
func (m *testLogger) Close()                                        {}

type testMetrics struct {
	requestEndpoint string
	requestStatus   int
	requestCalls    int
	durationCalls   int
	hits            int
	misses          int
	purges          int
}

func (m *testMetrics) IncRequestsTotal(endpoint string, status int) {
	m.requestEndpoint = endpoint
	m.requestStatus = status
	m.requestCalls++
}
func (m *testMetrics) ObserveRequestDuration(_ string, _ time.Duration) { m.durationCalls++ }
func (m *testMetrics) IncCacheHits()                                    { m.hits++ }
func (m *testMetrics) IncCacheMisses()                                  { m.misses++ }
func (m *testMetrics) IncCachePurges()                                  { m.purges++ }
func (m *testMetrics) IncCyclesTotal(_ string)                          {}
func (m *testMetrics) ObserveCycleDuration(_ time.Duration)             {}
func (m *testMetrics) AddPagesScanned(_ int)                            {}
func (m *testMetrics) AddChangesDetected(_ int)                         {}
func (m *testMetrics) AddNotifications(_ int)                           {}
func (m *testMetrics) SetPagesTotal(_ string, _ int)                    {}

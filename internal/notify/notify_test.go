package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"updatescan/internal/structures"
	"updatescan/internal/testutil"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogNotifier_Pluralizes(t *testing.T) {
	logger := &testutil.MockLogger{}
	n := NewLogNotifier(logger)

	n.ShowNotification(context.Background(), 1)
	n.ShowNotification(context.Background(), 3)

	require.Len(t, logger.Logs, 2)
	assert.Equal(t, "1 page has changed", logger.Logs[0].Format)
	assert.Equal(t, "%d pages have changed", logger.Logs[1].Format)
	assert.Equal(t, []interface{}{3}, logger.Logs[1].Args)
}

func TestMultiNotifier_FansOut(t *testing.T) {
	a, b := &testutil.MockNotifier{}, &testutil.MockNotifier{}

	MultiNotifier{a, b}.ShowNotification(context.Background(), 2)

	assert.Equal(t, []int{2}, a.Counts)
	assert.Equal(t, []int{2}, b.Counts)
}

func TestNewNotifier_WebhookOnlyWhenConfigured(t *testing.T) {
	logger := &testutil.MockLogger{}

	plain := NewNotifier(&structures.Config{}, logger)
	assert.Len(t, plain.(MultiNotifier), 1)

	conf := &structures.Config{Notification: structures.NotificationConfig{WebhookURL: "http://localhost/hook"}}
	withHook := NewNotifier(conf, logger)
	require.Len(t, withHook.(MultiNotifier), 2)
	assert.IsType(t, &WebhookNotifier{}, withHook.(MultiNotifier)[1])
}

func TestWebhook_DeliverSignsBody(t *testing.T) {
	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		gotSig = r.Header.Get(SignatureHeader)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	w := NewWebhookNotifier(srv.URL, "s3cret", &testutil.MockLogger{})
	err := w.Deliver(context.Background(), &Event{Type: EventChanges, Timestamp: 42, Count: 2})
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(gotBody, &event))
	assert.Equal(t, Event{Type: EventChanges, Timestamp: 42, Count: 2}, event)
	assert.Equal(t, "sha256="+Sign("s3cret", gotBody), gotSig)
}

func TestWebhook_NoSignatureWithoutSecret(t *testing.T) {
	var hasSig atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hasSig.Store(r.Header.Get(SignatureHeader) != "")
	}))
	defer srv.Close()

	w := NewWebhookNotifier(srv.URL, "", &testutil.MockLogger{})
	require.NoError(t, w.Deliver(context.Background(), &Event{Type: EventChanges}))
	assert.False(t, hasSig.Load())
}

func TestWebhook_DeliverReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	w := NewWebhookNotifier(srv.URL, "", &testutil.MockLogger{})
	err := w.Deliver(context.Background(), &Event{})
	assert.ErrorContains(t, err, "status 502")
}

func TestWebhook_ShowNotificationRetries(t *testing.T) {
	var attempts atomic.Int32
	var wg sync.WaitGroup
	wg.Add(3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		defer wg.Done()
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	logger := &testutil.MockLogger{}
	w := NewWebhookNotifier(srv.URL, "", logger)
	w.delays = []time.Duration{0, time.Millisecond, time.Millisecond}
	w.now = func() time.Time { return time.UnixMilli(7) }

	w.ShowNotification(context.Background(), 5)

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("webhook was not retried")
	}
	assert.Equal(t, int32(3), attempts.Load())
	assert.Eventually(t, func() bool { return logger.Count("warn") == 2 }, time.Second, 5*time.Millisecond)
}

func TestWebhook_WaitBlocksUntilDelivered(t *testing.T) {
	var received atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	var releaseOnce sync.Once
	unblock := func() { releaseOnce.Do(func() { close(release) }) }
	defer unblock()

	w := NewWebhookNotifier(srv.URL, "", &testutil.MockLogger{})
	w.ShowNotification(context.Background(), 2)

	waited := make(chan error, 1)
	go func() { waited <- w.Wait(context.Background()) }()

	select {
	case <-waited:
		t.Fatal("Wait returned before the webhook was delivered")
	case <-time.After(50 * time.Millisecond):
	}

	unblock()
	select {
	case err := <-waited:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not return after delivery")
	}
	assert.Equal(t, int32(1), received.Load())
}

func TestWebhook_WaitHonorsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	defer close(release)

	w := NewWebhookNotifier(srv.URL, "", &testutil.MockLogger{})
	w.ShowNotification(context.Background(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, w.Wait(ctx), context.DeadlineExceeded)
}

func TestWebhook_WaitWithNothingPending(t *testing.T) {
	w := NewWebhookNotifier("http://localhost/hook", "", &testutil.MockLogger{})
	assert.NoError(t, w.Wait(context.Background()))
}

func TestMultiNotifier_WaitJoinsErrors(t *testing.T) {
	a := &testutil.MockNotifier{}
	b := &testutil.MockNotifier{WaitErr: context.DeadlineExceeded}

	err := MultiNotifier{a, b}.Wait(context.Background())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, a.Waits)
	assert.Equal(t, 1, b.Waits)
}

package slack

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/Tomas-vilte/sonar-funnel/internal/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlack struct {
	mu        sync.Mutex
	responses []func(w http.ResponseWriter)
	texts     []string
	channels  []string
}

func (f *fakeSlack) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if r.URL.Path != "/chat.postMessage" {
		http.NotFound(w, r)
		return
	}
	_ = r.ParseForm()
	f.texts = append(f.texts, r.Form.Get("text"))
	f.channels = append(f.channels, r.Form.Get("channel"))

	respond := func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": true, "channel": "C123", "ts": "1760788800.000100"}`))
	}
	if len(f.responses) > 0 {
		respond = f.responses[0]
		f.responses = f.responses[1:]
	}
	respond(w)
}

func rateLimited(retryAfter string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Retry-After", retryAfter)
		w.WriteHeader(http.StatusTooManyRequests)
	}
}

func slackError(code string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok": false, "error": "` + code + `"}`))
	}
}

func newTestReporter(t *testing.T, fake *fakeSlack) (*Reporter, *[]time.Duration) {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	var sleeps []time.Duration
	controller := retry.NewController(retry.WithSleep(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}))

	reporter, err := NewReporter("xoxb-test", "C123", controller, WithAPIURL(server.URL+"/"))
	require.NoError(t, err)
	return reporter, &sleeps
}

func TestNewReporter_Validation(t *testing.T) {
	_, err := NewReporter("", "C123", retry.NewController())
	assert.ErrorIs(t, err, appErrors.ErrSlackTokenMissing)

	_, err = NewReporter("xoxb-test", "", retry.NewController())
	assert.ErrorIs(t, err, appErrors.ErrSlackChannelMissing)
}

func TestPostReport_Success(t *testing.T) {
	fake := &fakeSlack{}
	reporter, sleeps := newTestReporter(t, fake)

	err := reporter.PostReport(context.Background(), "No new issues found in the last 7 day(s).")

	require.NoError(t, err)
	assert.Equal(t, []string{"No new issues found in the last 7 day(s)."}, fake.texts)
	assert.Equal(t, []string{"C123"}, fake.channels)
	assert.Empty(t, *sleeps)
}

func TestPostReport_RetriesRateLimit(t *testing.T) {
	fake := &fakeSlack{responses: []func(http.ResponseWriter){rateLimited("3")}}
	reporter, sleeps := newTestReporter(t, fake)

	err := reporter.PostReport(context.Background(), "report")

	require.NoError(t, err)
	assert.Len(t, fake.texts, 2, "el mensaje se reintenta una vez")
	assert.Equal(t, []time.Duration{3 * time.Second}, *sleeps)
}

func TestPostReport_SlackError(t *testing.T) {
	fake := &fakeSlack{responses: []func(http.ResponseWriter){slackError("channel_not_found")}}
	reporter, sleeps := newTestReporter(t, fake)

	err := reporter.PostReport(context.Background(), "report")

	assert.ErrorIs(t, err, appErrors.ErrChatPost)
	assert.Contains(t, err.Error(), "channel_not_found")
	assert.Len(t, fake.texts, 1)
	assert.Empty(t, *sleeps)
}

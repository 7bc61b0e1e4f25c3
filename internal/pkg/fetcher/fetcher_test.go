package fetcher

import (
	"RoastMe/internal/api/config"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title</title>
  <meta property="og:title" content="MeetBot - Meetings, but worse">
  <meta name="description" content="The   scheduling assistant nobody asked for.">
</head>
<body>
  <article>
    <h1>MeetBot</h1>
    <p>MeetBot books meetings about meetings so you never have free time again. Our revolutionary calendar engine finds the worst possible slot for everyone involved.</p>
    <p>Pricing starts at just ninety nine dollars per seat per month, billed annually, with a mandatory onboarding call.</p>
  </article>
</body>
</html>`

func newTestFetcher(maxExcerpt int) *Fetcher {
	return NewFetcher(config.FetcherConfig{
		Enabled:    true,
		Timeout:    2 * time.Second,
		UserAgent:  "RoastMeTest",
		MaxExcerpt: maxExcerpt,
	}, WithAllowPrivateHosts())
}

func TestSnapshot(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	snap, err := newTestFetcher(40).Snapshot(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "RoastMeTest", gotUA)
	assert.Equal(t, "MeetBot - Meetings, but worse", snap.Title)
	assert.Equal(t, "The scheduling assistant nobody asked for.", snap.Description)
	assert.LessOrEqual(t, len([]rune(snap.Excerpt)), 43)

	summary := snap.Summary()
	assert.True(t, strings.HasPrefix(summary, "Title: MeetBot"))
	assert.Contains(t, summary, "Description: The scheduling assistant")
}

func TestSnapshot_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestFetcher(100).Snapshot(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestSnapshot_RejectsBadURLs(t *testing.T) {
	f := NewFetcher(config.FetcherConfig{})

	_, err := f.Snapshot(context.Background(), "ftp://example.com/file")
	assert.ErrorIs(t, err, ErrInvalidURL)

	_, err = f.Snapshot(context.Background(), "http://127.0.0.1:8080/admin")
	assert.ErrorIs(t, err, ErrBlockedHost)

	_, err = f.Snapshot(context.Background(), "localhost:3002")
	assert.ErrorIs(t, err, ErrBlockedHost)
}

func TestSummary_Empty(t *testing.T) {
	var snap *Snapshot
	assert.Equal(t, "", snap.Summary())
	assert.Equal(t, "", (&Snapshot{}).Summary())
}

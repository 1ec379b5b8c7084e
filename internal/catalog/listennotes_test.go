package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(handler http.HandlerFunc) (*Client, func()) {
	server := httptest.NewServer(handler)
	client := NewClient("test-key", server.URL)
	return client, server.Close
}

func TestClient_Search(t *testing.T) {
	var gotPath, gotKey string
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotKey = r.Header.Get("X-ListenAPI-Key")
		w.Write([]byte(`{
			"results": [
				{
					"id": "ln-1",
					"title_original": "Tech Daily",
					"description_original": "News",
					"image": "https://cdn.example.com/1.jpg",
					"publisher_original": "Example Media"
				}
			]
		}`))
	})
	defer done()

	results, err := client.Search(context.Background(), "tech news")

	require.NoError(t, err)
	assert.Equal(t, "test-key", gotKey)
	assert.Contains(t, gotPath, "q=tech+news")
	assert.Contains(t, gotPath, "type=podcast")

	require.Len(t, results, 1)
	assert.Equal(t, "ln-1", results[0].ExternalID)
	assert.Equal(t, "Tech Daily", results[0].Title)
	assert.Equal(t, "Example Media", results[0].Publisher)
}

func TestClient_Search_EmptyTerm(t *testing.T) {
	client := NewClient("test-key", "")

	_, err := client.Search(context.Background(), "")

	assert.Error(t, err)
}

func TestClient_BestPodcasts(t *testing.T) {
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"podcasts": [
				{"id": "ln-1", "title": "First", "publisher": "A"},
				{"id": "ln-2", "title": "Second", "publisher": "B"}
			]
		}`))
	})
	defer done()

	results, err := client.BestPodcasts(context.Background())

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "First", results[0].Title)
	assert.Equal(t, "ln-2", results[1].ExternalID)
}

func TestClient_GetPodcast_SortsEpisodesRecentFirst(t *testing.T) {
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		// Deliberately out of order to exercise the client-side guarantee.
		w.Write([]byte(`{
			"id": "ln-1",
			"title": "Tech Daily",
			"episodes": [
				{"id": "ep-old", "title": "Oldest", "pub_date_ms": 1000},
				{"id": "ep-new", "title": "Newest", "pub_date_ms": 3000},
				{"id": "ep-mid", "title": "Middle", "pub_date_ms": 2000}
			]
		}`))
	})
	defer done()

	detail, err := client.GetPodcast(context.Background(), "ln-1")

	require.NoError(t, err)
	assert.Equal(t, "Tech Daily", detail.Title)
	require.Len(t, detail.Episodes, 3)
	assert.Equal(t, "ep-new", detail.Episodes[0].ID)
	assert.Equal(t, "ep-mid", detail.Episodes[1].ID)
	assert.Equal(t, "ep-old", detail.Episodes[2].ID)
}

func TestClient_GetPodcast_PreservesAudioURL(t *testing.T) {
	audioURL := "https://cdn.example.com/audio/ep1.mp3?token=opaque%2Fvalue"
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"id": "ln-1",
			"title": "Tech Daily",
			"episodes": [
				{"id": "ep-1", "title": "One", "audio": "` + audioURL + `", "pub_date_ms": 1000}
			]
		}`))
	})
	defer done()

	detail, err := client.GetPodcast(context.Background(), "ln-1")

	require.NoError(t, err)
	require.Len(t, detail.Episodes, 1)
	assert.Equal(t, audioURL, detail.Episodes[0].Audio)
}

func TestClient_NotFound(t *testing.T) {
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer done()

	_, err := client.GetPodcast(context.Background(), "missing")

	assert.ErrorContains(t, err, "not found")
}

func TestClient_UpstreamError(t *testing.T) {
	client, done := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	defer done()

	_, err := client.Search(context.Background(), "tech")

	assert.ErrorContains(t, err, "unexpected status")
}

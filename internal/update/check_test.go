package update

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testChecker(url string) *Checker {
	return &Checker{BaseURL: url, Repo: DefaultRepo, Client: &http.Client{Timeout: time.Second}}
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/pxkundu/awdx/releases/latest", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestCheckLatest_UpdateAvailable(t *testing.T) {
	srv := serve(t, `{"tag_name": "v0.2.0"}`)

	r := testChecker(srv.URL).CheckLatest(context.Background(), "v0.1.0")

	assert.NotNil(t, r)
	assert.Equal(t, "v0.2.0", r.Latest)
	assert.Equal(t, "v0.1.0", r.Current)
	assert.True(t, r.NeedsUpdate())
	assert.Equal(t, "go install github.com/pxkundu/awdx/cmd/awdx-scan@latest", r.UpdateURL)
}

func TestCheckLatest_UpToDateIgnoresPrefix(t *testing.T) {
	srv := serve(t, `{"tag_name": "v0.1.0"}`)

	r := testChecker(srv.URL).CheckLatest(context.Background(), "0.1.0")

	assert.NotNil(t, r)
	assert.False(t, r.NeedsUpdate())
}

func TestCheckLatest_DevVersion(t *testing.T) {
	assert.Nil(t, NewChecker().CheckLatest(context.Background(), "dev"))
	assert.False(t, (&Result{Latest: "v1.0.0", Current: "dev"}).NeedsUpdate())
}

func TestCheckLatest_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		_, _ = w.Write([]byte(`{"tag_name": "v0.2.0"}`))
	}))
	defer srv.Close()

	assert.Nil(t, testChecker(srv.URL).CheckLatest(context.Background(), "v0.1.0"))
}

func TestCheckLatest_Canceled(t *testing.T) {
	srv := serve(t, `{"tag_name": "v0.2.0"}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Nil(t, testChecker(srv.URL).CheckLatest(ctx, "v0.1.0"))
}

func TestCheckLatest_NetworkError(t *testing.T) {
	assert.Nil(t, testChecker("http://127.0.0.1:1").CheckLatest(context.Background(), "v0.1.0"))
}

func TestCheckLatest_BadResponses(t *testing.T) {
	for name, body := range map[string]string{
		"bad json":   `not json`,
		"empty tag":  `{"tag_name": ""}`,
		"prerelease": `{"tag_name": "v0.3.0-rc1", "prerelease": true}`,
		"draft":      `{"tag_name": "v0.3.0", "draft": true}`,
	} {
		srv := serve(t, body)
		assert.Nil(t, testChecker(srv.URL).CheckLatest(context.Background(), "v0.1.0"), name)
	}
}

func TestCheckLatest_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	assert.Nil(t, testChecker(srv.URL).CheckLatest(context.Background(), "v0.1.0"))
}

// Package update checks GitHub Releases for a newer awdx-scan build.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultRepo is the GitHub repository whose releases are checked.
const DefaultRepo = "pxkundu/awdx"

// Result holds the outcome of a version check.
type Result struct {
	Latest    string // e.g. "v0.1.0"
	Current   string
	UpdateURL string // "go install github.com/pxkundu/awdx/cmd/awdx-scan@latest"
}

// NeedsUpdate reports whether Latest differs from Current. A leading "v"
// is ignored on both sides; development builds never need an update.
func (r *Result) NeedsUpdate() bool {
	if r.Current == "dev" {
		return false
	}
	return strings.TrimPrefix(r.Latest, "v") != strings.TrimPrefix(r.Current, "v")
}

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
}

// Checker queries the releases API.
type Checker struct {
	BaseURL string
	Repo    string
	Client  *http.Client
}

// NewChecker returns a Checker for DefaultRepo with a short client timeout.
func NewChecker() *Checker {
	return &Checker{
		BaseURL: "https://api.github.com",
		Repo:    DefaultRepo,
		Client:  &http.Client{Timeout: 2 * time.Second},
	}
}

// CheckLatest returns the latest published release, or nil on a dev build,
// network failure, timeout, or an unusable response. It never returns an
// error; a failed check must not fail the command that asked for it.
func (c *Checker) CheckLatest(ctx context.Context, currentVersion string) *Result {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}

	url := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimSuffix(c.BaseURL, "/"), c.Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var release githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil
	}
	if release.TagName == "" || release.Draft || release.Prerelease {
		return nil
	}

	return &Result{
		Latest:    release.TagName,
		Current:   currentVersion,
		UpdateURL: fmt.Sprintf("go install github.com/%s/cmd/awdx-scan@latest", c.Repo),
	}
}

// Package release asks GitHub whether a newer authgate build exists.
package release

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	defaultOwner   = "safedep"
	defaultRepo    = "authgate"
	defaultTimeout = 5 * time.Second
	defaultBaseURL = "https://api.github.com"
)

// Release is the latest published release.
type Release struct {
	Tag string `json:"tag_name"`
	URL string `json:"html_url"`
}

// UpdateResult compares the running version against the latest release.
type UpdateResult struct {
	UpdateAvailable bool   `json:"update_available"`
	LatestVersion   string `json:"latest_version"`
	CurrentVersion  string `json:"current_version"`
	ReleaseURL      string `json:"release_url"`
}

type Option func(*Checker)

// Checker queries the GitHub releases API.
type Checker struct {
	owner   string
	repo    string
	timeout time.Duration
	baseURL string
	client  *http.Client
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.client = client
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Checker) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithRepository(owner, repo string) Option {
	return func(c *Checker) {
		c.owner = owner
		c.repo = repo
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Checker) {
		c.timeout = timeout
	}
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		owner:   defaultOwner,
		repo:    defaultRepo,
		timeout: defaultTimeout,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Timeout: c.timeout}
	}
	return c
}

// Latest fetches the most recent non-prerelease release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github API returned status %d", resp.StatusCode)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("failed to decode release: %w", err)
	}
	if rel.Tag == "" {
		return nil, fmt.Errorf("release has no tag")
	}

	return &rel, nil
}

// Check reports whether the latest release is newer than current.
func (c *Checker) Check(ctx context.Context, current string) (*UpdateResult, error) {
	rel, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}

	return &UpdateResult{
		UpdateAvailable: IsNewer(current, rel.Tag),
		LatestVersion:   rel.Tag,
		CurrentVersion:  current,
		ReleaseURL:      rel.URL,
	}, nil
}

// IsNewer reports whether latest is a higher semantic version than current.
// Development builds never compare as outdated.
func IsNewer(current, latest string) bool {
	current = normalize(current)
	latest = normalize(latest)

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return false
	}

	return semver.Compare(latest, current) > 0
}

func normalize(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

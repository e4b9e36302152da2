package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"jlo/internal/env"
)

const adoptiumAPIBase = "https://api.adoptium.net/v3"

// catalogTimeout bounds a single metadata request.
const catalogTimeout = 30 * time.Second

// Adoptium implements Resolver for Eclipse Adoptium (Temurin builds).
type Adoptium struct {
	baseURL string
	client  *http.Client
	env     env.Provider
	logger  *slog.Logger
}

// AdoptiumOption configures an Adoptium resolver.
type AdoptiumOption func(*Adoptium)

// WithBaseURL points the resolver at another catalog root.
func WithBaseURL(u string) AdoptiumOption {
	return func(a *Adoptium) { a.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) AdoptiumOption {
	return func(a *Adoptium) { a.client = c }
}

// WithResolverLogger sets the resolver's logger.
func WithResolverLogger(l *slog.Logger) AdoptiumOption {
	return func(a *Adoptium) { a.logger = l }
}

// NewAdoptium creates a resolver for the host described by p.
func NewAdoptium(p env.Provider, opts ...AdoptiumOption) *Adoptium {
	a := &Adoptium{
		baseURL: adoptiumAPIBase,
		client:  &http.Client{Timeout: catalogTimeout},
		env:     p,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name returns the distributor name
func (a *Adoptium) Name() string {
	return "Eclipse Adoptium"
}

// adoptiumReleasesResponse represents the API response for available releases
type adoptiumReleasesResponse struct {
	AvailableLTSReleases []int `json:"available_lts_releases"`
	AvailableReleases    []int `json:"available_releases"`
}

// adoptiumAssetResponse represents one element of the latest-assets response
type adoptiumAssetResponse struct {
	Binary struct {
		Package struct {
			Link     string `json:"link"`
			Checksum string `json:"checksum"`
			Size     int64  `json:"size"`
			Name     string `json:"name"`
		} `json:"package"`
	} `json:"binary"`
	ReleaseName string `json:"release_name"`
	Version     struct {
		Semver string `json:"semver"`
	} `json:"version"`
}

// LatestBuild fetches the newest build of major for this OS and architecture.
func (a *Adoptium) LatestBuild(ctx context.Context, major int) (*JdkMetadata, error) {
	osToken, err := env.CatalogOS(a.env)
	if err != nil {
		return nil, err
	}
	arch, err := env.CatalogArch(a.env)
	if err != nil {
		return nil, err
	}

	query := url.Values{
		"architecture": {arch},
		"image_type":   {"jdk"},
		"os":           {osToken},
		"vendor":       {"eclipse"},
	}
	apiURL := fmt.Sprintf("%s/assets/latest/%d/hotspot?%s", a.baseURL, major, query.Encode())

	body, err := a.get(ctx, apiURL)
	if err != nil {
		return nil, err
	}

	var assets []adoptiumAssetResponse
	if err := json.Unmarshal(body, &assets); err != nil {
		return nil, fmt.Errorf("%w: unexpected JSON structure: %v", ErrMetadataIncomplete, err)
	}

	if len(assets) == 0 {
		return nil, fmt.Errorf("%w (Java %d, %s/%s)\nTried to fetch metadata from: %s", ErrNoMatchingBuild, major, osToken, arch, apiURL)
	}

	asset := assets[0]
	meta := &JdkMetadata{
		Semver:       strings.TrimSpace(asset.Version.Semver),
		ReleaseName:  strings.TrimSpace(asset.ReleaseName),
		PackageName:  strings.TrimSpace(asset.Binary.Package.Name),
		DownloadLink: strings.TrimSpace(asset.Binary.Package.Link),
		Checksum:     strings.TrimSpace(asset.Binary.Package.Checksum),
		Size:         asset.Binary.Package.Size,
	}
	if err := validateMetadata(meta); err != nil {
		return nil, err
	}

	a.logger.Debug("resolved build", "semver", meta.Semver, "package", meta.PackageName)
	return meta, nil
}

// LatestMajorVersion returns the highest published major version.
func (a *Adoptium) LatestMajorVersion(ctx context.Context) (int, error) {
	resp, err := a.releases(ctx)
	if err != nil {
		return 0, err
	}
	if len(resp.AvailableReleases) == 0 {
		return 0, ErrNoReleasesFound
	}
	return slices.Max(resp.AvailableReleases), nil
}

// AvailableReleases lists published major versions, newest first.
func (a *Adoptium) AvailableReleases(ctx context.Context) ([]JavaRelease, error) {
	resp, err := a.releases(ctx)
	if err != nil {
		return nil, err
	}
	if len(resp.AvailableReleases) == 0 {
		return nil, ErrNoReleasesFound
	}

	releases := make([]JavaRelease, 0, len(resp.AvailableReleases))
	for _, v := range resp.AvailableReleases {
		releases = append(releases, JavaRelease{
			Major: v,
			IsLTS: slices.Contains(resp.AvailableLTSReleases, v),
		})
	}

	slices.SortFunc(releases, func(x, y JavaRelease) int {
		return y.Major - x.Major
	})
	return releases, nil
}

func (a *Adoptium) releases(ctx context.Context) (*adoptiumReleasesResponse, error) {
	body, err := a.get(ctx, a.baseURL+"/info/available_releases")
	if err != nil {
		return nil, err
	}

	var resp adoptiumReleasesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unexpected JSON structure received from API: %v", ErrMetadataIncomplete, err)
	}
	return &resp, nil
}

func (a *Adoptium) get(ctx context.Context, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: API returned status %d for %s", ErrCatalogUnreachable, resp.StatusCode, apiURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", ErrCatalogUnreachable, err)
	}
	return body, nil
}

// validateMetadata rejects empty fields and names that would escape the
// install or scratch directories when used as path elements.
func validateMetadata(m *JdkMetadata) error {
	fields := []struct{ name, value string }{
		{"version.semver", m.Semver},
		{"release_name", m.ReleaseName},
		{"binary.package.name", m.PackageName},
		{"binary.package.link", m.DownloadLink},
		{"binary.package.checksum", m.Checksum},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: missing %s", ErrMetadataIncomplete, f.name)
		}
	}

	for _, name := range []string{m.Semver, m.ReleaseName, m.PackageName} {
		if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
			return fmt.Errorf("%w: invalid path element %q", ErrMetadataIncomplete, name)
		}
	}
	return nil
}

package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/oshokin/ssms-extension-updater/internal/version"
)

// channelURLTemplate builds the vendor channel manifest URL from a major
// version ("21", "22") and a channel selector ("release", "preview").
const channelURLTemplate = "https://aka.ms/ssms/%s/%s/channel"

var (
	// ErrMalformed is returned when a manifest lacks a structurally required field.
	ErrMalformed = errors.New("malformed manifest")
	// errBadHTTPStatus is returned when the manifest host answers with a non-200 status.
	errBadHTTPStatus = errors.New("unexpected http status")
)

// ChannelURL returns the release channel manifest URL for the given
// major product version and release channel.
func ChannelURL(version, channel string) string {
	return fmt.Sprintf(channelURLTemplate, version, channel)
}

// Client fetches release manifests over HTTPS.
type Client struct {
	httpClient *http.Client
}

// NewClient returns a manifest client using the provided HTTP client.
// A nil client falls back to http.DefaultClient; callers normally pass
// one with the configured timeout.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{httpClient: httpClient}
}

// FetchChannel downloads and parses the channel manifest.
// A manifest without channel items is rejected as malformed.
func (c *Client) FetchChannel(ctx context.Context, url string) (*ChannelManifest, error) {
	var m ChannelManifest
	if err := c.getJSON(ctx, url, &m); err != nil {
		return nil, fmt.Errorf("fetch channel manifest: %w", err)
	}

	if len(m.ChannelItems) == 0 {
		return nil, fmt.Errorf("channel manifest has no items: %w", ErrMalformed)
	}

	return &m, nil
}

// FetchCatalog downloads and parses the catalog manifest.
// A manifest without packages is rejected as malformed.
func (c *Client) FetchCatalog(ctx context.Context, url string) (*CatalogManifest, error) {
	var m CatalogManifest
	if err := c.getJSON(ctx, url, &m); err != nil {
		return nil, fmt.Errorf("fetch catalog manifest: %w", err)
	}

	if len(m.Packages) == 0 {
		return nil, fmt.Errorf("catalog manifest has no packages: %w", ErrMalformed)
	}

	return &m, nil
}

// CatalogURL returns the catalog manifest URL the channel points at.
// By protocol only the first channel item's first payload is consulted.
func (m *ChannelManifest) CatalogURL() (string, error) {
	if len(m.ChannelItems) == 0 {
		return "", fmt.Errorf("channel manifest has no items: %w", ErrMalformed)
	}

	item := m.ChannelItems[0]
	if len(item.Payloads) == 0 {
		return "", fmt.Errorf("channel item %q has no payloads: %w", item.ID, ErrMalformed)
	}

	if item.Payloads[0].URL == "" {
		return "", fmt.Errorf("channel item %q payload has no url: %w", item.ID, ErrMalformed)
	}

	return item.Payloads[0].URL, nil
}

// getJSON performs a single GET and decodes the body into v.
// There are no retries here; callers decide whether a failure is fatal.
func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus)
	}

	data, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if err = json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return nil
}

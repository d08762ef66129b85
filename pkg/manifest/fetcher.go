package manifest

//go:generate mockery -name Fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/sidkik/mediasync/pkg/version"
)

// Fetcher retrieves the current manifest.
type Fetcher interface {
	Fetch(ctx context.Context) (Manifest, error)
}

type httpFetcher struct {
	url    string
	client *http.Client
}

// NewFetcher returns a Fetcher that GETs the manifest from `url`.
func NewFetcher(client *http.Client, url string) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpFetcher{url: url, client: client}
}

// Fetch downloads the whole manifest body before parsing it. Any failure
// before the body is complete is a FetchError.
func (f *httpFetcher) Fetch(ctx context.Context) (Manifest, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return Manifest{}, &FetchError{URL: f.url, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := f.client.Do(req)
	if err != nil {
		return Manifest{}, &FetchError{URL: f.url, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Manifest{}, &FetchError{
			URL:   f.url,
			Cause: fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Manifest{}, &FetchError{URL: f.url, Cause: err}
	}
	log.WithField("bytes", len(body)).Debug("Manifest download complete, parsing")

	return Parse(body)
}

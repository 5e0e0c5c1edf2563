package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"localpress/internal/core"
	"localpress/internal/logger"
)

const (
	requestTimeout = 30 * time.Second
	maxRetries     = 1
)

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// doWithRetry performs the request with one retry on transport errors.
// Non-2xx responses are not retried; rate limits and auth failures do not
// get better on the second attempt.
func doWithRetry(client *http.Client, req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := client.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// PexelsProvider queries the Pexels photo search API.
type PexelsProvider struct {
	apiKey string
	client *http.Client
	base   string
}

// NewPexelsProvider creates the provider. An empty API key makes it an
// always-miss provider rather than an error source.
func NewPexelsProvider(apiKey string) *PexelsProvider {
	return &PexelsProvider{apiKey: apiKey, client: newHTTPClient(), base: "https://api.pexels.com/v1"}
}

func (p *PexelsProvider) Name() string { return "pexels" }

func (p *PexelsProvider) Search(ctx context.Context, query, orientation string, page int) (*core.ImageDescriptor, error) {
	if p.apiKey == "" {
		return nil, nil
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("page", fmt.Sprintf("%d", page))
	if orientation != "" {
		params.Set("orientation", orientation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build pexels request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := doWithRetry(p.client, req)
	if err != nil {
		return nil, fmt.Errorf("pexels request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Quota exhaustion and auth errors become a miss so the chain
		// moves on.
		logger.Warn("pexels returned non-ok status", "status", resp.StatusCode)
		return nil, nil
	}

	var payload struct {
		Photos []struct {
			Alt          string `json:"alt"`
			Photographer string `json:"photographer"`
			Src          struct {
				Large string `json:"large"`
			} `json:"src"`
		} `json:"photos"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode pexels response: %w", err)
	}
	if len(payload.Photos) == 0 || payload.Photos[0].Src.Large == "" {
		return nil, nil
	}

	photo := payload.Photos[0]
	alt := photo.Alt
	if alt == "" {
		alt = query
	}
	return &core.ImageDescriptor{
		Source:      core.ImageSourcePexels,
		URL:         photo.Src.Large,
		AltText:     alt,
		Attribution: fmt.Sprintf("Photo by %s on Pexels", photo.Photographer),
	}, nil
}

// UnsplashProvider queries the Unsplash photo search API.
type UnsplashProvider struct {
	accessKey string
	client    *http.Client
	base      string
}

// NewUnsplashProvider creates the provider. An empty access key makes it
// an always-miss provider.
func NewUnsplashProvider(accessKey string) *UnsplashProvider {
	return &UnsplashProvider{accessKey: accessKey, client: newHTTPClient(), base: "https://api.unsplash.com"}
}

func (p *UnsplashProvider) Name() string { return "unsplash" }

func (p *UnsplashProvider) Search(ctx context.Context, query, orientation string, page int) (*core.ImageDescriptor, error) {
	if p.accessKey == "" {
		return nil, nil
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("page", fmt.Sprintf("%d", page))
	if orientation != "" {
		params.Set("orientation", orientation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.base+"/search/photos?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build unsplash request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+p.accessKey)

	resp, err := doWithRetry(p.client, req)
	if err != nil {
		return nil, fmt.Errorf("unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("unsplash returned non-ok status", "status", resp.StatusCode)
		return nil, nil
	}

	var payload struct {
		Results []struct {
			AltDescription string `json:"alt_description"`
			URLs           struct {
				Regular string `json:"regular"`
			} `json:"urls"`
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"results"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode unsplash response: %w", err)
	}
	if len(payload.Results) == 0 || payload.Results[0].URLs.Regular == "" {
		return nil, nil
	}

	result := payload.Results[0]
	alt := result.AltDescription
	if alt == "" {
		alt = query
	}
	return &core.ImageDescriptor{
		Source:      core.ImageSourceUnsplash,
		URL:         result.URLs.Regular,
		AltText:     alt,
		Attribution: fmt.Sprintf("Photo by %s on Unsplash", result.User.Name),
	}, nil
}

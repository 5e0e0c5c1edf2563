// Package publish pushes finished articles to the site's WordPress-style
// REST endpoint.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"localpress/internal/core"
	"localpress/internal/logger"
)

const requestTimeout = 60 * time.Second

// Config holds the publishing endpoint settings.
type Config struct {
	BaseURL  string // e.g. https://www.hilltoprealty.com/wp-json/wp/v2
	Username string
	AppToken string // application password, not the account password
}

// Client talks to the posts endpoint.
type Client struct {
	cfg    Config
	client *http.Client
}

// NewClient creates a publishing client.
func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg, client: &http.Client{Timeout: requestTimeout}}
}

// Post is the remote representation returned by the endpoint.
type Post struct {
	ID     int    `json:"id"`
	Link   string `json:"link"`
	Status string `json:"status"`
}

type postPayload struct {
	Title         string `json:"title"`
	Slug          string `json:"slug"`
	Content       string `json:"content"`
	Excerpt       string `json:"excerpt,omitempty"`
	Status        string `json:"status"`
	FeaturedMedia string `json:"featured_media_url,omitempty"`
}

// CreateDraft uploads the article as an unpublished draft and returns the
// remote post.
func (c *Client) CreateDraft(ctx context.Context, article *core.Article) (*Post, error) {
	return c.createPost(ctx, article, "draft")
}

// Publish flips an existing post to published status by its remote ID.
func (c *Client) Publish(ctx context.Context, postID int) (*Post, error) {
	post, err := c.send(ctx, fmt.Sprintf("/posts/%d", postID), map[string]string{"status": "publish"})
	if err != nil {
		return nil, err
	}
	logger.Info("post published", "remote_id", post.ID, "link", post.Link)
	return post, nil
}

func (c *Client) createPost(ctx context.Context, article *core.Article, status string) (*Post, error) {
	payload := postPayload{
		Title:         article.Title,
		Slug:          article.Slug,
		Content:       article.Content,
		Excerpt:       article.MetaDescription,
		Status:        status,
		FeaturedMedia: article.FeaturedImage,
	}
	post, err := c.send(ctx, "/posts", payload)
	if err != nil {
		return nil, err
	}
	logger.Info("article uploaded", "slug", article.Slug, "remote_id", post.ID, "status", post.Status)
	return post, nil
}

func (c *Client) send(ctx context.Context, path string, payload interface{}) (*Post, error) {
	if c.cfg.BaseURL == "" {
		return nil, fmt.Errorf("publishing endpoint is not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode post: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.AppToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("publish endpoint returned %d: %s", resp.StatusCode, string(detail))
	}

	var post Post
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to decode publish response: %w", err)
	}
	return &post, nil
}

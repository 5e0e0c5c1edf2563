package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"localpress/internal/core"
)

func TestCreateDraft(t *testing.T) {
	var received map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, token, ok := r.BasicAuth()
		if !ok || user != "editor" || token != "app-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatal(err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Post{ID: 7, Link: "https://site/post-7", Status: "draft"})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, Username: "editor", AppToken: "app-token"})
	post, err := c.CreateDraft(context.Background(), &core.Article{
		Title:           "Draft Title",
		Slug:            "draft-title",
		Content:         "<h1>Draft Title</h1>",
		MetaDescription: "meta",
	})
	if err != nil {
		t.Fatalf("CreateDraft failed: %v", err)
	}
	if post.ID != 7 || post.Status != "draft" {
		t.Errorf("unexpected post: %+v", post)
	}
	if received["status"] != "draft" {
		t.Errorf("payload status = %v, want draft", received["status"])
	}
	if received["slug"] != "draft-title" {
		t.Errorf("payload slug = %v", received["slug"])
	}
}

func TestPublish_UpdatesExistingPostByID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/posts/8" {
			t.Errorf("unexpected path %s, want /posts/8", r.URL.Path)
		}
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["status"] != "publish" {
			t.Errorf("status = %v, want publish", payload["status"])
		}
		if _, present := payload["content"]; present {
			t.Error("status update must not resend content")
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(Post{ID: 8, Link: "https://site/post-8", Status: "publish"})
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	post, err := c.Publish(context.Background(), 8)
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if post.ID != 8 || post.Status != "publish" {
		t.Errorf("unexpected post: %+v", post)
	}
}

func TestCreateDraft_ErrorsSurfaceDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message": "invalid token"}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL})
	_, err := c.CreateDraft(context.Background(), &core.Article{Title: "X", Slug: "x"})
	if err == nil {
		t.Fatal("expected error on 403")
	}
}

func TestCreateDraft_Unconfigured(t *testing.T) {
	c := NewClient(Config{})
	if _, err := c.CreateDraft(context.Background(), &core.Article{}); err == nil {
		t.Fatal("expected error when endpoint is not configured")
	}
}

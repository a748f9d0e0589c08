package vision_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/trazilica/server/internal/app/services/vision"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *vision.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := vision.New(context.Background(), vision.Config{
		Endpoint: srv.URL,
		APIKey:   "test-key",
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestDetectLabels(t *testing.T) {
	image := []byte("fake-jpeg-bytes")

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s, want POST", r.Method)
		}
		if got := r.URL.Query().Get("key"); got != "test-key" {
			t.Errorf("key: got %q, want %q", got, "test-key")
		}

		var req struct {
			Requests []struct {
				Image struct {
					Content string `json:"content"`
				} `json:"image"`
				Features []struct {
					Type       string `json:"type"`
					MaxResults int    `json:"maxResults"`
				} `json:"features"`
			} `json:"requests"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Requests) != 1 {
			t.Fatalf("expected 1 request entry, got %d", len(req.Requests))
		}
		entry := req.Requests[0]
		if entry.Image.Content != base64.StdEncoding.EncodeToString(image) {
			t.Error("image content is not the base64 of the submitted bytes")
		}
		if len(entry.Features) != 1 || entry.Features[0].Type != "LABEL_DETECTION" {
			t.Errorf("features: got %+v", entry.Features)
		}
		if entry.Features[0].MaxResults != 3 {
			t.Errorf("maxResults: got %d, want 3", entry.Features[0].MaxResults)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"responses":[{"labelAnnotations":[
			{"mid":"/m/0k1tl","description":"Pen","score":0.97},
			{"mid":"/m/01jfsr","description":"Desk","score":0.81}
		]}]}`))
	})

	labels, err := c.DetectLabels(context.Background(), image, 3)
	if err != nil {
		t.Fatalf("DetectLabels failed: %v", err)
	}
	if len(labels) != 2 {
		t.Fatalf("expected 2 labels, got %d", len(labels))
	}
	if labels[0].Description != "Pen" || labels[0].Score != 0.97 {
		t.Errorf("labels[0]: got %+v", labels[0])
	}

	got := vision.Descriptions(labels)
	if got[0] != "Pen" || got[1] != "Desk" {
		t.Errorf("Descriptions: got %v", got)
	}
}

func TestDetectLabels_NoLabels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{}]}`))
	})

	_, err := c.DetectLabels(context.Background(), []byte("img"), 3)
	if !errors.Is(err, vision.ErrNoLabels) {
		t.Errorf("expected ErrNoLabels, got %v", err)
	}
}

func TestDetectLabels_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{"error":{"code":3,"message":"Bad image data."}}]}`))
	})

	_, err := c.DetectLabels(context.Background(), []byte("img"), 3)
	if err == nil || errors.Is(err, vision.ErrNoLabels) {
		t.Errorf("expected an API error, got %v", err)
	}
}

func TestDetectLabels_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := c.DetectLabels(context.Background(), []byte("img"), 3)
	if err == nil {
		t.Error("expected an error for a non-200 response")
	}
}

func TestDetectLabels_TruncatesToMaxResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"responses":[{"labelAnnotations":[
			{"description":"A","score":0.9},
			{"description":"B","score":0.8},
			{"description":"C","score":0.7}
		]}]}`))
	})

	labels, err := c.DetectLabels(context.Background(), []byte("img"), 2)
	if err != nil {
		t.Fatalf("DetectLabels failed: %v", err)
	}
	if len(labels) != 2 {
		t.Errorf("expected 2 labels, got %d", len(labels))
	}
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := vision.New(context.Background(), vision.Config{}, zap.NewNop())
	if err == nil {
		t.Error("expected an error when neither API key nor credentials are set")
	}
}

// internal/app/services/vision/client.go

// Package vision is a thin client for the Cloud Vision images:annotate
// endpoint. Only LABEL_DETECTION is requested; the rest of the API is
// out of scope for this app.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// DefaultEndpoint is the production annotate URL. Tests point this
	// at an httptest server.
	DefaultEndpoint = "https://vision.googleapis.com/v1/images:annotate"

	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
)

// ErrNoLabels means the API answered but recognized nothing usable in
// the photo. Handlers map this to a classification failure rather than
// a server error.
var ErrNoLabels = errors.New("vision: no labels detected")

// Label is one recognized object with the API's confidence.
type Label struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
	MID         string  `json:"mid"`
}

// Config selects endpoint and credentials. Exactly one of APIKey or
// CredentialsJSON should be set; CredentialsJSON wins when both are.
type Config struct {
	Endpoint        string
	APIKey          string
	CredentialsJSON string
	Timeout         time.Duration
}

type Client struct {
	http     *http.Client
	endpoint string
	apiKey   string
	log      *zap.Logger
}

func New(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	hc := &http.Client{Timeout: timeout}
	if cfg.CredentialsJSON != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("vision: parse credentials: %w", err)
		}
		hc = oauth2.NewClient(ctx, creds.TokenSource)
		hc.Timeout = timeout
	} else if cfg.APIKey == "" {
		return nil, errors.New("vision: either an API key or credentials JSON is required")
	}

	return &Client{
		http:     hc,
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		log:      log,
	}, nil
}

// request/response bodies, trimmed to the fields we use

type annotateRequest struct {
	Requests []annotateEntry `json:"requests"`
}

type annotateEntry struct {
	Image    annotateImage     `json:"image"`
	Features []annotateFeature `json:"features"`
}

type annotateImage struct {
	Content string `json:"content"`
}

type annotateFeature struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults"`
}

type annotateResponse struct {
	Responses []struct {
		LabelAnnotations []Label `json:"labelAnnotations"`
		Error            *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

// DetectLabels sends the image for label detection and returns up to
// maxResults labels, highest confidence first (the API's own order).
func (c *Client) DetectLabels(ctx context.Context, image []byte, maxResults int) ([]Label, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	body := annotateRequest{
		Requests: []annotateEntry{{
			Image: annotateImage{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []annotateFeature{{
				Type:       "LABEL_DETECTION",
				MaxResults: maxResults,
			}},
		}},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("vision: encode request: %w", err)
	}

	endpoint := c.endpoint
	if c.apiKey != "" {
		endpoint += "?key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision: annotate: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("vision: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("vision API error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(raw, 512)))
		return nil, fmt.Errorf("vision: annotate returned %d", resp.StatusCode)
	}

	var out annotateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("vision: decode response: %w", err)
	}
	if len(out.Responses) == 0 {
		return nil, ErrNoLabels
	}
	r := out.Responses[0]
	if r.Error != nil {
		return nil, fmt.Errorf("vision: %s (code %d)", r.Error.Message, r.Error.Code)
	}
	if len(r.LabelAnnotations) == 0 {
		return nil, ErrNoLabels
	}
	if len(r.LabelAnnotations) > maxResults {
		r.LabelAnnotations = r.LabelAnnotations[:maxResults]
	}
	return r.LabelAnnotations, nil
}

// Descriptions extracts just the label text, in API order.
func Descriptions(labels []Label) []string {
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		out = append(out, l.Description)
	}
	return out
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

package httpjson_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trazilica/server/internal/app/system/httpjson"
)

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.Write(rec, http.StatusCreated, map[string]string{"id": "abc"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body["id"] != "abc" {
		t.Errorf("id: got %q, want %q", body["id"], "abc")
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	httpjson.Error(rec, http.StatusConflict, httpjson.CodeDuplicateTag, "that group tag is already taken")

	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusConflict)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if body.Error.Code != httpjson.CodeDuplicateTag {
		t.Errorf("code: got %q, want %q", body.Error.Code, httpjson.CodeDuplicateTag)
	}
	if body.Error.Message == "" {
		t.Error("expected a message")
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		Tag string `json:"tag"`
	}

	t.Run("valid body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"tag":"4A"}`))
		var p payload
		if err := httpjson.Decode(req, &p); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if p.Tag != "4A" {
			t.Errorf("tag: got %q, want %q", p.Tag, "4A")
		}
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"tga":"4A"}`))
		var p payload
		if err := httpjson.Decode(req, &p); err == nil {
			t.Error("expected error for unknown field")
		}
	})

	t.Run("trailing garbage", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"tag":"4A"}{"tag":"4B"}`))
		var p payload
		if err := httpjson.Decode(req, &p); err == nil {
			t.Error("expected error for trailing document")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))
		var p payload
		if err := httpjson.Decode(req, &p); err == nil {
			t.Error("expected error for empty body")
		}
	})
}

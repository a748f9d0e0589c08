package leaderboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/trazilica/server/internal/app/features/leaderboard"
	"github.com/trazilica/server/internal/domain/scope"
	"github.com/trazilica/server/internal/testutil"
)

func TestServe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	ana := fixtures.CreateStudent(ctx, "Ana", "ana@example.com")
	marko := fixtures.CreateStudent(ctx, "Marko", "marko@example.com")
	if _, err := fixtures.Scores.Increment(ctx, scope.Global(), ana.ID, 3); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if _, err := fixtures.Scores.Increment(ctx, scope.Global(), marko.ID, 1); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	h := leaderboard.NewHandler(db, zap.NewNop())
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/leaderboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Scope       string `json:"scope"`
		Leaderboard []struct {
			Name  string `json:"name"`
			Score int    `json:"score"`
		} `json:"leaderboard"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Scope != "global" {
		t.Errorf("scope: got %q, want %q", resp.Scope, "global")
	}
	if len(resp.Leaderboard) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Leaderboard))
	}
	if resp.Leaderboard[0].Name != "Ana" || resp.Leaderboard[0].Score != 3 {
		t.Errorf("top row: got %+v", resp.Leaderboard[0])
	}
}

func TestServe_Empty(t *testing.T) {
	db := testutil.SetupTestDB(t)

	h := leaderboard.NewHandler(db, zap.NewNop())
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/leaderboard", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	// An empty board is [], not null.
	if body := rec.Body.String(); !json.Valid([]byte(body)) ||
		!containsEmptyArray(body) {
		t.Errorf("expected an empty array, got %s", body)
	}
}

func containsEmptyArray(body string) bool {
	var resp struct {
		Leaderboard []any `json:"leaderboard"`
	}
	if err := json.Unmarshal([]byte(body), &resp); err != nil {
		return false
	}
	return resp.Leaderboard != nil && len(resp.Leaderboard) == 0
}

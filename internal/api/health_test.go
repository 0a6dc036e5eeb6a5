package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/adlytics/govern/internal/api"
)

func TestLiveness_NoDatabase(t *testing.T) {
	t.Parallel()

	r := gin.New()
	h := api.NewHealthHandler(nil, nil, testLogger(), "test")
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status   string `json:"status"`
		Version  string `json:"version"`
		Database string `json:"database"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if resp.Status != "ok" || resp.Version != "test" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Database != "not_configured" {
		t.Errorf("expected database not_configured, got %q", resp.Database)
	}
}

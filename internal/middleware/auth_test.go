package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/adlytics/govern/internal/middleware"
	"github.com/adlytics/govern/internal/models"
)

type mockActorLookup struct {
	actors map[string]models.Actor
	err    error
	calls  int
}

func (m *mockActorLookup) ResolveActor(_ context.Context, token string) (models.Actor, error) {
	m.calls++
	if m.err != nil {
		return models.Actor{}, m.err
	}
	if actor, ok := m.actors[token]; ok {
		return actor, nil
	}
	return models.Actor{}, models.ErrNotAuthenticated
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestAuthMiddleware(t *testing.T) {
	lookup := &mockActorLookup{actors: map[string]models.Actor{
		"good-token": {ID: "u1", Role: models.RoleAdmin, WorkspaceID: "w1"},
	}}

	tests := []struct {
		name       string
		authHeader string
		wantCode   int
	}{
		{"valid token", "Bearer good-token", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid token", "Bearer bad-token", http.StatusUnauthorized},
		{"no bearer prefix", "good-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middleware.AuthMiddleware(lookup, quietLogger()))
			r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Errorf("got %d, want %d", w.Code, tt.wantCode)
			}
		})
	}
}

func TestAuthMiddleware_NoMembership(t *testing.T) {
	lookup := &mockActorLookup{err: models.ErrNoMembership}

	r := gin.New()
	r.Use(middleware.AuthMiddleware(lookup, quietLogger()))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer some-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("got %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAuthMiddleware_SetsActor(t *testing.T) {
	lookup := &mockActorLookup{actors: map[string]models.Actor{
		"t1": {ID: "u1", Role: models.RoleOwner, WorkspaceID: "w1"},
	}}

	var gotActor models.Actor
	r := gin.New()
	r.Use(middleware.AuthMiddleware(lookup, quietLogger()))
	r.GET("/test", func(c *gin.Context) {
		v, _ := c.Get(middleware.ActorKey)
		gotActor, _ = v.(models.Actor)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer t1")
	r.ServeHTTP(w, req)

	if gotActor.ID != "u1" || gotActor.Role != models.RoleOwner || gotActor.WorkspaceID != "w1" {
		t.Fatalf("unexpected actor in context: %+v", gotActor)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{"Bearer abc123", "abc123"},
		{"abc123", ""},
		{"", ""},
		{"Bearer ", ""},
		{"bearer abc", ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			if tt.header != "" {
				c.Request.Header.Set("Authorization", tt.header)
			}
			got := middleware.ExtractBearerToken(c)
			if got != tt.want {
				t.Errorf("ExtractBearerToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestCachedActorLookup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := &mockActorLookup{actors: map[string]models.Actor{
		"t1": {ID: "u1", Role: models.RoleEditor, WorkspaceID: "w1"},
	}}
	cached := middleware.NewCachedActorLookup(ctx, inner)

	for i := 0; i < 3; i++ {
		actor, err := cached.ResolveActor(ctx, "t1")
		if err != nil {
			t.Fatalf("ResolveActor: %v", err)
		}
		if actor.ID != "u1" {
			t.Fatalf("got actor %+v", actor)
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call after repeated hits, got %d", inner.calls)
	}
}

func TestCachedActorLookup_NegativeCache(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	inner := &mockActorLookup{actors: map[string]models.Actor{}}
	cached := middleware.NewCachedActorLookup(ctx, inner)

	for i := 0; i < 3; i++ {
		if _, err := cached.ResolveActor(ctx, "bad"); err == nil {
			t.Fatal("expected error for unknown token")
		}
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 inner call with negative caching, got %d", inner.calls)
	}
}

package accessgin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/open-rails/accesskit/entitlements"
	"github.com/open-rails/accesskit/gate"
	"github.com/open-rails/accesskit/session"
	memorystore "github.com/open-rails/accesskit/storage/memory"
	"github.com/open-rails/accesskit/store"
)

func setupStore(t *testing.T, userID uuid.UUID, grants []entitlements.Entitlement) *store.Store {
	t.Helper()
	f := memorystore.NewFetcher()
	f.Set(userID, grants)
	auth := session.NewStatic()
	auth.SignIn(userID)
	st := store.New(f, auth, nil)
	st.Start(context.Background())
	t.Cleanup(st.Close)
	return st
}

func TestRequireScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	st := setupStore(t, userID, []entitlements.Entitlement{
		{ID: uuid.New(), UserID: userID, Scope: "challenge_pack:intro", Active: true},
	})
	g := gate.New(st)

	r := gin.New()
	handler := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/intro", RequireScope(g, "challenge_pack:intro"), handler)
	r.GET("/advanced", RequireScope(g, "challenge_pack:advanced"), handler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/intro", nil))
	if w.Code != http.StatusOK {
		t.Errorf("owned scope: status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/advanced", nil))
	if w.Code != http.StatusForbidden {
		t.Errorf("missing scope: status = %d, want 403", w.Code)
	}
}

func TestRequireScopePendingStore(t *testing.T) {
	gin.SetMode(gin.TestMode)
	// A store that was never started reports loading.
	st := store.New(memorystore.NewFetcher(), session.NewStatic(), nil)
	g := gate.New(st)

	r := gin.New()
	r.GET("/", RequireScope(g, "app"), func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202 while loading", w.Code)
	}
}

func TestHandleEntitlementsGET(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	st := setupStore(t, userID, []entitlements.Entitlement{
		{ID: uuid.New(), UserID: userID, Scope: "cert:*", Active: true},
	})

	r := gin.New()
	r.GET("/entitlements", HandleEntitlementsGET(st))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/entitlements", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := w.Body.String(); body == "" || body == "{}" {
		t.Errorf("body = %q, want the entitlement list", body)
	}
}

func TestIdentifyStashesUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	auth := session.NewStatic()
	auth.SignIn(userID)

	r := gin.New()
	r.Use(Identify(auth))
	r.GET("/", func(c *gin.Context) {
		got, ok := session.UserIDFromContext(c.Request.Context())
		if !ok || got != userID {
			c.String(http.StatusInternalServerError, "missing identity")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, body = %q", w.Code, w.Body.String())
	}
}

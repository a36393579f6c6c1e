package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/olegiv/pagecms-go/internal/middleware"
	"github.com/olegiv/pagecms-go/internal/model"
	"github.com/olegiv/pagecms-go/internal/testutil"
)

func postLogin(t *testing.T, h *AuthHandler, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	req = requestWithSession(t, h.sessionManager, req)

	w := httptest.NewRecorder()
	h.Login(w, req)
	return w
}

func TestAuthHandler_Login_Success(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	testutil.SeedUser(t, db, "editor@test.local", model.RoleEditor)

	w := postLogin(t, h, "editor@test.local", "password")

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != "/admin" {
		t.Errorf("Location = %q; want /admin", got)
	}
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	testutil.SeedUser(t, db, "editor@test.local", model.RoleEditor)

	w := postLogin(t, h, "editor@test.local", "wrong")

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q; want /login", got)
	}
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	w := postLogin(t, h, "ghost@test.local", "password")

	if got := w.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q; want /login", got)
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	w := postLogin(t, h, "", "")

	if got := w.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q; want /login", got)
	}
}

func TestAuthHandler_Login_LockoutAfterRepeatedFailures(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	h := NewAuthHandler(db, testRenderer(t, sm), sm, lp)

	testutil.SeedUser(t, db, "editor@test.local", model.RoleEditor)

	for i := 0; i < 3; i++ {
		postLogin(t, h, "editor@test.local", "wrong")
	}

	// The account is locked now; even the right password is rejected.
	if locked, _ := lp.IsAccountLocked("editor@test.local"); !locked {
		t.Fatal("account should be locked after repeated failures")
	}

	w := postLogin(t, h, "editor@test.local", "password")
	if got := w.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q; want /login for a locked account", got)
	}
}

func TestAuthHandler_LoginForm_RedirectsWhenAuthenticated(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	user := testutil.SeedUser(t, db, "editor@test.local", model.RoleEditor)

	req := requestWithSession(t, sm, httptest.NewRequest(http.MethodGet, "/login", nil))
	sm.Put(req.Context(), SessionKeyUserID, user.ID)

	w := httptest.NewRecorder()
	h.LoginForm(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d; want %d", w.Code, http.StatusSeeOther)
	}
	if got := w.Header().Get("Location"); got != "/admin" {
		t.Errorf("Location = %q; want /admin", got)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	db := testDB(t)
	sm := testSessionManager()
	h := NewAuthHandler(db, testRenderer(t, sm), sm, nil)

	user := testutil.SeedUser(t, db, "editor@test.local", model.RoleEditor)

	req := requestWithSession(t, sm, httptest.NewRequest(http.MethodPost, "/logout", nil))
	sm.Put(req.Context(), SessionKeyUserID, user.ID)

	w := httptest.NewRecorder()
	h.Logout(w, req)

	if got := w.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q; want /login", got)
	}
	if id := sm.GetInt64(req.Context(), SessionKeyUserID); id != 0 {
		t.Errorf("session user id = %d; want cleared", id)
	}
}

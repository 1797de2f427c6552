package http

import (
	"net/http"
	"strings"
	"testing"

	"chirper/domain"
)

func TestRegister(t *testing.T) {
	srv, _ := newTestServer(t)

	user, cookie := signUp(t, srv, "alice")
	if user.ID == 0 {
		t.Fatal("user got no id")
	}
	if user.Username != "alice" {
		t.Fatalf("username = %q", user.Username)
	}
	if cookie.Value == "" {
		t.Fatal("empty remember cookie")
	}

	// The cookie must resolve through the middleware right away.
	rec := do(t, srv, "GET", "/my-tweets", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated request: status = %d", rec.Code)
	}

	// Taken credentials are rejected.
	body := `{"name":"Other","username":"alice","email":"other@example.com","password":"supersecret"}`
	rec = do(t, srv, "POST", "/register", strings.NewReader(body), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("taken username: status = %d, want 400", rec.Code)
	}
}

func TestRegisterHidesCredentials(t *testing.T) {
	srv, _ := newTestServer(t)

	body := `{"name":"Test","username":"alice","email":"alice@example.com","password":"supersecret"}`
	rec := do(t, srv, "POST", "/register", strings.NewReader(body), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status = %d", rec.Code)
	}
	raw := rec.Body.String()
	for _, needle := range []string{"password_hash", "remember_hash", "supersecret"} {
		if strings.Contains(raw, needle) {
			t.Fatalf("response leaks %q: %s", needle, raw)
		}
	}
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	user, _ := signUp(t, srv, "alice")

	rec := do(t, srv, "POST", "/login",
		strings.NewReader(`{"email":"alice@example.com","password":"supersecret"}`), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: status = %d, body %s", rec.Code, rec.Body)
	}
	var got domain.User
	decode(t, rec, &got)
	if got.ID != user.ID {
		t.Fatalf("logged in as %d, want %d", got.ID, user.ID)
	}
	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "remember_token" {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatal("login set no remember cookie")
	}

	rec = do(t, srv, "POST", "/login",
		strings.NewReader(`{"email":"alice@example.com","password":"wrong"}`), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong password: status = %d, want 400", rec.Code)
	}
}

// Logging out rotates the remember token, so the old cookie stops working.
func TestLogout(t *testing.T) {
	srv, _ := newTestServer(t)
	_, cookie := signUp(t, srv, "alice")

	rec := do(t, srv, "POST", "/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: status = %d, body %s", rec.Code, rec.Body)
	}

	rec = do(t, srv, "GET", "/my-tweets", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("old cookie after logout: status = %d, want 401", rec.Code)
	}
}

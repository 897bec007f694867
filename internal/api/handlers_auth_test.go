package api

import (
	"net/http"
	"testing"
)

func TestRegisterAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Alice",
		"email":    "Alice@Example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d (body: %s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
		Avatar string `json:"avatar"`
		Token  string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token in the register response")
	}
	if resp.Email != "alice@example.com" {
		t.Errorf("email = %q, want lowercased", resp.Email)
	}
	if resp.Avatar == "" {
		t.Error("expected a default avatar")
	}

	// the freshly issued token works against /me
	rec = env.do(t, http.MethodGet, "/api/auth/me", resp.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var me struct {
		ID string `json:"id"`
	}
	decodeBody(t, rec, &me)
	if me.ID != resp.ID {
		t.Errorf("me id = %q, want %q", me.ID, resp.ID)
	}
}

func TestRegisterValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"short name", map[string]string{"name": "Al", "email": "a@example.com", "password": "password123"}},
		{"bad email", map[string]string{"name": "Alice", "email": "not-an-email", "password": "password123"}},
		{"short password", map[string]string{"name": "Alice", "email": "a@example.com", "password": "short"}},
		{"missing fields", map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/register", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body: %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Other Alice",
		"email":    "ALICE@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("expected a token in the login response")
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "Alice", "alice@example.com")

	tests := []struct {
		name  string
		email string
	}{
		{"wrong password", "alice@example.com"},
		{"unknown email", "nobody@example.com"},
	}

	var messages []string
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
				"email":    tt.email,
				"password": "wrongpassword",
			})
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rec.Code)
			}
			var resp struct {
				Message string `json:"message"`
			}
			decodeBody(t, rec, &resp)
			messages = append(messages, resp.Message)
		})
	}

	// no email-enumeration oracle: both failures read the same
	if len(messages) == 2 && messages[0] != messages[1] {
		t.Errorf("failure messages differ: %q vs %q", messages[0], messages[1])
	}
}

func TestMeRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/me", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me without token = %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/auth/me", "not-a-valid-token", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("me with garbage token = %d, want 401", rec.Code)
	}
}

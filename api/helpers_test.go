package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Str0ng!Passw0rd"

func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()
	var cfg config
	cfg.env = "test"
	cfg.jwtSecret = "0123456789abcdef0123456789abcdef"
	cfg.sessionTTL = time.Hour
	st := newMemStore()
	app := &application{config: cfg, store: st}
	ts := httptest.NewServer(composeRoutes(app))
	t.Cleanup(ts.Close)
	return ts, st
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func doRequest(t *testing.T, client *http.Client, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	err := json.NewDecoder(resp.Body).Decode(v)
	if err != nil {
		t.Fatal(err)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// signupUser registers a user through the API and returns a client
// holding the session cookie.
func signupUser(t *testing.T, ts *httptest.Server, username, email string) *http.Client {
	t.Helper()
	client := newClient(t)
	resp := doRequest(t, client, http.MethodPost, ts.URL+"/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signup %s: got status %d, want %d: %s", username, resp.StatusCode, http.StatusOK, readBody(t, resp))
	}
	resp.Body.Close()
	return client
}

// seedAdminLogin plants an ADMIN account directly in the store, since
// signup never assigns that role, and logs in as it.
func seedAdminLogin(t *testing.T, ts *httptest.Server, st *memStore) *http.Client {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	err = st.insertUser(&user{
		Username:     "root",
		Email:        "root@example.com",
		PasswordHash: hash,
		Role:         roleAdmin,
	})
	if err != nil {
		t.Fatal(err)
	}
	client := newClient(t)
	resp := doRequest(t, client, http.MethodPost, ts.URL+"/auth/login", map[string]string{
		"username": "root",
		"password": testPassword,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin login: got status %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()
	return client
}

func createTask(t *testing.T, client *http.Client, ts *httptest.Server, title string, completed bool) task {
	t.Helper()
	resp := doRequest(t, client, http.MethodPost, ts.URL+"/todos", map[string]any{
		"title":     title,
		"completed": completed,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task %q: got status %d, want %d: %s", title, resp.StatusCode, http.StatusCreated, readBody(t, resp))
	}
	var created task
	decodeJSON(t, resp, &created)
	return created
}

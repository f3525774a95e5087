package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/accountd/accountd/internal/handler/dto"
	"github.com/accountd/accountd/internal/service"
	"github.com/accountd/accountd/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newAccountRouter(t *testing.T) (http.Handler, *testutil.MemoryAccountStore) {
	t.Helper()

	store := testutil.NewMemoryAccountStore()
	svc := service.NewAccountService(store, nil, nil, nil, discardLogger())
	h := NewAccountHandler(svc, discardLogger())

	r := chi.NewRouter()
	r.Route("/account", h.Routes)
	return r, store
}

func doRequest(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeAccount(t *testing.T, rec *httptest.ResponseRecorder) dto.AccountResponse {
	t.Helper()

	var resp dto.AccountResponse
	if err := json.NewDecoder(bytes.NewReader(rec.Body.Bytes())).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestAccountHandler_EndToEnd(t *testing.T) {
	r, _ := newAccountRouter(t)

	created := doRequest(t, r, http.MethodPost, "/account", `{"username":"alice","email":"a@x.com","password":"p"}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201 (body %q)", created.Code, created.Body.String())
	}
	if ct := created.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	want := dto.AccountResponse{ID: 1, Username: "alice", Email: "a@x.com", Password: "p"}
	if got := decodeAccount(t, created); got != want {
		t.Errorf("created = %+v, want %+v", got, want)
	}

	byName := doRequest(t, r, http.MethodGet, "/account/username/alice", "")
	if byName.Code != http.StatusOK {
		t.Fatalf("get by username status = %d, want 200", byName.Code)
	}
	if byName.Body.String() != created.Body.String() {
		t.Errorf("get by username body = %q, want %q", byName.Body.String(), created.Body.String())
	}

	byID := doRequest(t, r, http.MethodGet, "/account/1", "")
	if byID.Code != http.StatusOK {
		t.Fatalf("get by id status = %d, want 200", byID.Code)
	}
	if byID.Body.String() != created.Body.String() {
		t.Errorf("get by id body = %q, want %q", byID.Body.String(), created.Body.String())
	}

	missing := doRequest(t, r, http.MethodGet, "/account/999", "")
	if missing.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want 404", missing.Code)
	}
	if missing.Body.Len() != 0 {
		t.Errorf("missing body = %q, want empty", missing.Body.String())
	}
}

func TestAccountHandler_Create_IgnoresClientID(t *testing.T) {
	r, _ := newAccountRouter(t)

	rec := doRequest(t, r, http.MethodPost, "/account", `{"id":77,"username":"bob","email":"b@x.com","password":"q"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if got := decodeAccount(t, rec); got.ID != 1 {
		t.Errorf("id = %d, want store-assigned 1", got.ID)
	}
}

func TestAccountHandler_Create_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		seed       bool
		storeErr   error
		wantStatus int
		wantCode   string
	}{
		{"malformed json", `{"username":`, false, nil, http.StatusBadRequest, "INVALID_JSON"},
		{"not an object", `[1,2,3]`, false, nil, http.StatusBadRequest, "INVALID_JSON"},
		{"null body", `null`, false, nil, http.StatusBadRequest, "INVALID_JSON"},
		{"whitespace body", "  \n", false, nil, http.StatusBadRequest, "INVALID_JSON"},
		{"duplicate username", `{"username":"alice","email":"x@x.com","password":"z"}`, true, nil, http.StatusConflict, "USERNAME_TAKEN"},
		{"store failure", `{"username":"carol","email":"c@x.com","password":"z"}`, false, errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newAccountRouter(t)
			if tt.seed {
				seed := doRequest(t, r, http.MethodPost, "/account", `{"username":"alice","email":"a@x.com","password":"p"}`)
				if seed.Code != http.StatusCreated {
					t.Fatalf("seed status = %d", seed.Code)
				}
			}
			store.Err = tt.storeErr

			rec := doRequest(t, r, http.MethodPost, "/account", tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
		})
	}
}

func TestAccountHandler_GetByID_InvalidID(t *testing.T) {
	r, _ := newAccountRouter(t)

	tests := []string{"abc", "1.5", "99999999999999999999"}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			rec := doRequest(t, r, http.MethodGet, "/account/"+id, "")
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestAccountHandler_GetByUsername_NotFound(t *testing.T) {
	r, _ := newAccountRouter(t)

	rec := doRequest(t, r, http.MethodGet, "/account/username/nobody", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
}

func TestAccountHandler_GetByUsername_Escaped(t *testing.T) {
	tests := []struct {
		name     string
		username string
		path     string
	}{
		{"space", "john doe", "/account/username/john%20doe"},
		{"slash", "a/b", "/account/username/a%2Fb"},
		{"percent", "100%", "/account/username/100%25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newAccountRouter(t)

			body, _ := json.Marshal(dto.CreateAccountRequest{Username: tt.username, Email: "e@x.com", Password: "p"})
			if rec := doRequest(t, r, http.MethodPost, "/account", string(body)); rec.Code != http.StatusCreated {
				t.Fatalf("create status = %d", rec.Code)
			}

			rec := doRequest(t, r, http.MethodGet, tt.path, "")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			if got := decodeAccount(t, rec); got.Username != tt.username {
				t.Errorf("username = %q, want %q", got.Username, tt.username)
			}
		})
	}
}

func TestAccountHandler_Lookup_StoreError(t *testing.T) {
	r, store := newAccountRouter(t)
	store.Err = errors.New("db down")

	for _, path := range []string{"/account/1", "/account/username/alice"} {
		rec := doRequest(t, r, http.MethodGet, path, "")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("%s status = %d, want 500", path, rec.Code)
		}
	}
}

func TestAccountHandler_Create_NullBodyCreatesNothing(t *testing.T) {
	r, store := newAccountRouter(t)

	for i := 0; i < 2; i++ {
		rec := doRequest(t, r, http.MethodPost, "/account", "null")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("call %d: status = %d, want 400 (body %q)", i, rec.Code, rec.Body.String())
		}
	}
	if n := store.Len(); n != 0 {
		t.Errorf("store holds %d accounts, want 0", n)
	}
}

func TestAccountHandler_Create_ContentType(t *testing.T) {
	body := `{"username":"alice","email":"a@x.com","password":"p"}`

	tests := []struct {
		name        string
		contentType string
		wantStatus  int
		wantCode    string
	}{
		{"json", "application/json", http.StatusCreated, ""},
		{"json with charset", "application/json; charset=utf-8", http.StatusCreated, ""},
		{"missing", "", http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"plain text", "text/plain", http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
		{"form", "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, store := newAccountRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/account", strings.NewReader(body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode == "" {
				return
			}

			var resp dto.ErrorResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode error: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", resp.Code, tt.wantCode)
			}
			if n := store.Len(); n != 0 {
				t.Errorf("store holds %d accounts, want 0", n)
			}
		})
	}
}

func TestAccountHandler_Create_StreamedBodyTooLarge(t *testing.T) {
	r, store := newAccountRouter(t)

	body := `{"username":"` + strings.Repeat("a", 2048) + `","email":"a@x.com","password":"p"}`
	req := httptest.NewRequest(http.MethodPost, "/account", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1

	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 1024)
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413 (body %q)", rec.Code, rec.Body.String())
	}

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if resp.Code != "PAYLOAD_TOO_LARGE" {
		t.Errorf("code = %s, want PAYLOAD_TOO_LARGE", resp.Code)
	}
	if n := store.Len(); n != 0 {
		t.Errorf("store holds %d accounts, want 0", n)
	}
}

package middlewares_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/book-catalog-api/internal/api/middlewares"
	"github.com/stretchr/testify/assert"
)

func corsHandler(origins ...string) http.Handler {
	return mw.Cors(origins, slog.New(slog.NewTextHandler(io.Discard, nil)))(okHandler())
}

func TestCors_AllowedOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()

	corsHandler("http://localhost:5173").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCors_BlockedOriginGetsEnvelope(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/books/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()

	corsHandler("http://localhost:5173").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t,
		`{"success":false,"message":"Origin not allowed","data":null,"errors":[{"field":null,"message":"Origin not allowed","type":null}],"status_code":403}`,
		rec.Body.String())
}

func TestCors_NoOriginPassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	corsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCors_Wildcard(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anything.example")
	rec := httptest.NewRecorder()

	corsHandler("*").ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCors_Preflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/books/1", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	rec := httptest.NewRecorder()

	corsHandler("http://localhost:5173").ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ============================================================
// Тесты MaxBodyBytes
// ============================================================

func TestMaxBodyBytesAllowsSmallBody(t *testing.T) {
	mw := MaxBodyBytes(1024)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			t.Errorf("unexpected read error: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/leverage-adjustment", strings.NewReader(`{"pairs":[]}`))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestMaxBodyBytesRejectsDeclaredOversize(t *testing.T) {
	mw := MaxBodyBytes(16)
	called := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	body := bytes.Repeat([]byte("a"), 64)
	req := httptest.NewRequest("POST", "/leverage-adjustment", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413, got %d", w.Code)
	}
	if called {
		t.Error("handler must not run for oversized body")
	}
}

func TestMaxBodyBytesLimitsChunkedBody(t *testing.T) {
	mw := MaxBodyBytes(16)
	var readErr error
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))

	// ContentLength=-1 имитирует chunked encoding - лимит держит MaxBytesReader
	body := bytes.Repeat([]byte("a"), 64)
	req := httptest.NewRequest("POST", "/leverage-adjustment", bytes.NewReader(body))
	req.ContentLength = -1
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if readErr == nil {
		t.Error("expected read beyond the limit to fail")
	}
}

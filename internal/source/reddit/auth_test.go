package reddit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/abelbrown/mosaic/internal/source"
)

func newTestTokenSource(t *testing.T, handler http.HandlerFunc) *tokenSource {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newTokenSource("id", "secret", srv.URL, "test-agent", srv.Client())
}

func TestTokenCached(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTestTokenSource(t, func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "id" || pass != "secret" {
			t.Error("missing or wrong basic auth")
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok1", "expires_in": 3600})
	})

	for i := 0; i < 5; i++ {
		tok, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("Token: %v", err)
		}
		if tok != "tok1" {
			t.Fatalf("Token = %q, want tok1", tok)
		}
	}
	if n := exchanges.Load(); n != 1 {
		t.Errorf("exchanged %d times, want 1", n)
	}
}

func TestTokenConcurrentSingleExchange(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTestTokenSource(t, func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 3600})
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := ts.Token(context.Background()); err != nil {
				t.Errorf("Token: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := exchanges.Load(); n != 1 {
		t.Errorf("exchanged %d times, want 1", n)
	}
}

func TestTokenInvalidateForcesReExchange(t *testing.T) {
	var exchanges atomic.Int32
	ts := newTestTokenSource(t, func(w http.ResponseWriter, r *http.Request) {
		n := exchanges.Add(1)
		tok := "tok1"
		if n > 1 {
			tok = "tok2"
		}
		json.NewEncoder(w).Encode(map[string]any{"access_token": tok, "expires_in": 3600})
	})

	if tok, _ := ts.Token(context.Background()); tok != "tok1" {
		t.Fatalf("first Token = %q", tok)
	}
	ts.invalidate()
	if tok, _ := ts.Token(context.Background()); tok != "tok2" {
		t.Errorf("after invalidate Token should re-exchange, got %q", tok)
	}
}

func TestTokenShortTTLNotCached(t *testing.T) {
	// A TTL inside the safety margin expires immediately, so every call
	// exchanges again.
	var exchanges atomic.Int32
	ts := newTestTokenSource(t, func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 60})
	})

	ts.Token(context.Background())
	ts.Token(context.Background())
	if n := exchanges.Load(); n != 2 {
		t.Errorf("exchanged %d times, want 2", n)
	}
}

func TestTokenExchangeFailure(t *testing.T) {
	ts := newTestTokenSource(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := ts.Token(context.Background())
	if err == nil {
		t.Fatal("want error")
	}
	if source.KindOf(err) != source.KindAuth {
		t.Errorf("error kind = %v, want auth", source.KindOf(err))
	}
}

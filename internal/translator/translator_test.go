package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPProvider_Translate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("to"); got != "es" {
			t.Errorf("to = %s, want es", got)
		}
		if got := r.URL.Query().Get("api-version"); got != "3.0" {
			t.Errorf("api-version = %s", got)
		}
		if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "secret" {
			t.Errorf("subscription key = %s", got)
		}

		var body []map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body) != 1 || body[0]["text"] != "Hello" {
			t.Errorf("body = %+v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"translations":[{"text":"Hola","to":"es"}]}]`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "westeurope", "secret")
	got, err := p.Translate(context.Background(), "Hello", "es")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "Hola" {
		t.Fatalf("translation = %q, want Hola", got)
	}
}

func TestHTTPProvider_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", "")
	_, err := p.Translate(context.Background(), "Hello", "es")

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d", perr.StatusCode)
	}
}

func TestHTTPProvider_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not": "an array"}`))
	}))
	defer srv.Close()

	p := NewHTTPProvider(srv.URL, "", "")
	_, err := p.Translate(context.Background(), "Hello", "es")

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
}

func TestHTTPProvider_EmptyEndpoint(t *testing.T) {
	p := NewHTTPProvider("", "", "")
	if _, err := p.Translate(context.Background(), "Hello", "es"); err == nil {
		t.Fatal("expected error for unset endpoint")
	}
}

package idms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newIDMSServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/exchange", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("code") != "abc123" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"issued-token","username":"alice","role":"labeler"}`))
	})
	mux.HandleFunc("/verify", func(w http.ResponseWriter, r *http.Request) {
		if r.FormValue("token") == "issued-token" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	})
	return httptest.NewServer(mux)
}

func TestHTTPProvider_Exchange(t *testing.T) {
	srv := newIDMSServer(t)
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{
		ExchangeURL: srv.URL + "/exchange",
		VerifyURL:   srv.URL + "/verify",
	})

	grant, err := p.Exchange(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if grant.Token != "issued-token" || grant.Username != "alice" || grant.Role != "labeler" {
		t.Fatalf("grant = %+v", grant)
	}

	if _, err := p.Exchange(context.Background(), "wrong"); err == nil {
		t.Fatalf("expected an error for a rejected code")
	}
}

func TestHTTPProvider_Validate(t *testing.T) {
	srv := newIDMSServer(t)
	defer srv.Close()

	p := NewHTTPProvider(HTTPConfig{
		ExchangeURL: srv.URL + "/exchange",
		VerifyURL:   srv.URL + "/verify",
	})

	valid, err := p.Validate(context.Background(), "issued-token")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !valid {
		t.Fatalf("known token should validate")
	}

	valid, err = p.Validate(context.Background(), "stale")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if valid {
		t.Fatalf("unknown token must not validate")
	}
}

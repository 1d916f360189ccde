package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRequestSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/orders" {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["id"] != "ord_1" {
			t.Errorf("body = %v", body)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"id": "ord_1", "status": "pending"},
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	env, err := c.Request(context.Background(), http.MethodPost, "/orders", map[string]string{"id": "ord_1"})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var data map[string]string
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data["status"] != "pending" {
		t.Errorf("data = %v", data)
	}
}

func TestRequestEnvelopeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "quantity out of range"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 5*time.Second)
	_, err := c.Request(context.Background(), http.MethodPost, "/orders", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var re *Error
	if !errors.As(err, &re) {
		t.Fatalf("error type = %T", err)
	}
	if !re.Rejected || re.Message != "quantity out of range" {
		t.Errorf("error = %+v", re)
	}
	if !IsPermanent(err) {
		t.Error("envelope rejection should be permanent")
	}
}

func TestRequestHTTPStatusClassification(t *testing.T) {
	cases := []struct {
		status    int
		permanent bool
	}{
		{http.StatusBadRequest, true},
		{http.StatusNotFound, true},
		{http.StatusUnprocessableEntity, true},
		{http.StatusInternalServerError, false},
		{http.StatusBadGateway, false},
		{http.StatusServiceUnavailable, false},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "nope"})
		}))
		c := NewHTTPClient(srv.URL, 5*time.Second)
		_, err := c.Request(context.Background(), http.MethodGet, "/orders", nil)
		srv.Close()

		if err == nil {
			t.Fatalf("status %d: expected error", tc.status)
		}
		var re *Error
		if !errors.As(err, &re) {
			t.Fatalf("status %d: error type = %T", tc.status, err)
		}
		if re.Status != tc.status {
			t.Errorf("status = %d, want %d", re.Status, tc.status)
		}
		if IsPermanent(err) != tc.permanent {
			t.Errorf("status %d: permanent = %v, want %v", tc.status, IsPermanent(err), tc.permanent)
		}
	}
}

func TestRequestNetworkErrorIsTransient(t *testing.T) {
	// Nothing listens here.
	c := NewHTTPClient("http://127.0.0.1:1", 500*time.Millisecond)
	_, err := c.Request(context.Background(), http.MethodGet, "/orders", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if IsPermanent(err) {
		t.Error("transport failure must be transient")
	}
}

func TestRequestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, 50*time.Millisecond)
	_, err := c.Request(context.Background(), http.MethodGet, "/orders", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if IsPermanent(err) {
		t.Error("timeout must be transient")
	}
}

func TestReconfigure(t *testing.T) {
	c := NewHTTPClient("http://a", time.Second)
	c.Reconfigure("http://b", 2*time.Second)
	if c.BaseURL() != "http://b" {
		t.Errorf("base url = %q", c.BaseURL())
	}
}

package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPClient_SuggestCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/suggest-code" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key123" {
			t.Errorf("unexpected auth header %q", got)
		}

		var req struct {
			AnalyteName string `json:"analyte_name"`
			Unit        string `json:"unit"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.AnalyteName != "Thyroid Stimulating Hormone" {
			t.Errorf("unexpected analyte name %q", req.AnalyteName)
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"short_code": "TSH",
			"confidence": 0.91,
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "key123", time.Second)
	s, err := c.SuggestCode(context.Background(), "Thyroid Stimulating Hormone", "mIU/L")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil || s.ShortCode != "TSH" {
		t.Fatalf("expected TSH suggestion, got %+v", s)
	}
	if s.Confidence != 0.91 {
		t.Errorf("expected confidence 0.91, got %v", s.Confidence)
	}
}

func TestHTTPClient_EmptyAnswerIsNoSuggestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"short_code": ""})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	s, err := c.SuggestCode(context.Background(), "Unknown Analyte", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != nil {
		t.Errorf("expected nil suggestion for empty answer, got %+v", s)
	}
}

func TestHTTPClient_ServerErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	if _, err := c.SuggestCode(context.Background(), "Hemoglobin", ""); err == nil {
		t.Fatal("expected error for 502 response")
	}
}

func TestDisabled_NeverSuggests(t *testing.T) {
	s, err := Disabled{}.SuggestCode(context.Background(), "Hemoglobin", "g/dL")
	if err != nil || s != nil {
		t.Errorf("expected (nil, nil), got (%+v, %v)", s, err)
	}
}

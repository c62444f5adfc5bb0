package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestBodyParser(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		wantJSON    bool
		wantName    string
		wantAmount  float64
		wantOK      bool
	}{
		{"json number", "application/json", `{"name":" Rent ","amount":2500.5}`, true, "Rent", 2500.5, true},
		{"json string amount", "application/json", `{"name":"Rent","amount":"12,5"}`, true, "Rent", 12.5, true},
		{"form", "application/x-www-form-urlencoded", "name=Fun+%26+Leisure&amount=40", false, "Fun & Leisure", 40, true},
		{"form bad amount", "application/x-www-form-urlencoded", "amount=abc", false, "", 0, false},
		{"json without content type", "", `{"amount":3}`, true, "", 3, true},
		{"empty body", "", "", false, "", 0, false},
		{"control characters stripped", "application/json", "{\"name\":\"Re\\u0000nt\"}", true, "Rent", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}

			p := NewRequestBodyParser(req)
			if err := p.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if p.IsJSON() != tt.wantJSON {
				t.Errorf("IsJSON() = %v, want %v", p.IsJSON(), tt.wantJSON)
			}
			if got := p.Get("name"); got != tt.wantName {
				t.Errorf("Get(name) = %q, want %q", got, tt.wantName)
			}
			amount, ok := p.Amount("amount")
			if amount != tt.wantAmount || ok != tt.wantOK {
				t.Errorf("Amount() = %v, %v; want %v, %v", amount, ok, tt.wantAmount, tt.wantOK)
			}
		})
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":`))
	p := NewRequestBodyParser(req)
	if err := p.Parse(); err == nil {
		t.Fatal("expected parse error")
	}
	// the error is sticky
	if err := p.Parse(); err == nil {
		t.Fatal("expected parse error on second call")
	}
	if p.Get("amount") != "" {
		t.Error("Get should return empty string after a failed parse")
	}
}

func TestPathMonth(t *testing.T) {
	mux := http.NewServeMux()
	var got int
	var gotErr error
	mux.HandleFunc("GET /m/{month}", func(w http.ResponseWriter, r *http.Request) {
		got, gotErr = pathMonth(r)
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/m/7", nil))
	if gotErr != nil || got != 7 {
		t.Fatalf("pathMonth = %d, %v", got, gotErr)
	}
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/m/july", nil))
	if gotErr == nil {
		t.Fatal("expected error for non-numeric month")
	}
}

func TestIsHTMX(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if isHTMX(req) {
		t.Error("plain request detected as htmx")
	}
	req.Header.Set("HX-Request", "true")
	if !isHTMX(req) {
		t.Error("htmx request not detected")
	}
}

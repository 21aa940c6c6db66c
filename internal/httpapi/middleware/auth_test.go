package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireKey_NoKeysAllowsAll(t *testing.T) {
	h := RequireKey(nil)(okHandler())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != 200 {
		t.Fatalf("want 200 got %d", rr.Code)
	}
}

func TestRequireKey_BearerAndHeader(t *testing.T) {
	h := RequireKey([]string{"sekrit"})(okHandler())

	cases := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"bearer_ok", "Authorization", "Bearer sekrit", 200},
		{"bearer_case_insensitive_scheme", "Authorization", "bearer sekrit", 200},
		{"header_ok", "X-API-Key", "sekrit", 200},
		{"wrong_key", "X-API-Key", "nope", 401},
		{"missing", "", "", 401},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if c.header != "" {
				req.Header.Set(c.header, c.value)
			}
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)
			if rr.Code != c.want {
				t.Fatalf("want %d got %d", c.want, rr.Code)
			}
		})
	}
}

package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/themobileprof/mamacare-be/pkg/logging"
	"github.com/themobileprof/mamacare-be/pkg/twilio"
	"golang.org/x/time/rate"
)

const testSecret = "test-secret"

func mustToken(t *testing.T, userID, role string, ttl time.Duration) string {
	t.Helper()
	token, err := GenerateToken(userID, role, testSecret, ttl)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func TestJWTAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{UserID: "u1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantUser   string
	}{
		{
			name:       "bearer header",
			header:     "Bearer " + mustToken(t, "u1", RoleStaff, time.Hour),
			wantStatus: http.StatusOK,
			wantUser:   "u1",
		},
		{
			name:       "query token",
			query:      mustToken(t, "u2", RoleStaff, time.Hour),
			wantStatus: http.StatusOK,
			wantUser:   "u2",
		},
		{
			name:       "missing",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired",
			header:     "Bearer " + mustToken(t, "u1", RoleStaff, -time.Minute),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			header:     "Bearer " + func() string { s, _ := GenerateToken("u1", "", "other", time.Hour); return s }(),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unsigned",
			header:     "Bearer " + noneToken,
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(JWTAuth(testSecret))
			r.GET("/api/test", func(c *gin.Context) {
				c.String(http.StatusOK, c.GetString("user_id"))
			})

			target := "/api/test"
			if tt.query != "" {
				target += "?token=" + url.QueryEscape(tt.query)
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantUser != "" && w.Body.String() != tt.wantUser {
				t.Errorf("user = %q, want %q", w.Body.String(), tt.wantUser)
			}
		})
	}
}

func TestParseToken_EmptySecret(t *testing.T) {
	token := mustToken(t, "u1", "", time.Hour)
	if _, err := ParseToken(token, ""); err != ErrInvalidToken {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		role       string
		wantStatus int
	}{
		{"admin allowed", RoleAdmin, http.StatusOK},
		{"staff forbidden", RoleStaff, http.StatusForbidden},
		{"no role forbidden", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(JWTAuth(testSecret), RequireRole(RoleAdmin))
			r.POST("/api/triggers", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodPost, "/api/triggers", nil)
			req.Header.Set("Authorization", "Bearer "+mustToken(t, "u1", tt.role, time.Hour))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(RequireRole(RoleAdmin))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestTwilioSignature(t *testing.T) {
	gin.SetMode(gin.TestMode)

	const (
		authToken = "twilio-token"
		baseURL   = "https://mamacare.example.com"
	)
	form := url.Values{"Body": {"hi"}, "From": {"whatsapp:+919876543210"}}

	sign := func(fullURL string, params url.Values) string {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		payload := fullURL
		for _, k := range keys {
			payload += k + params.Get(k)
		}
		mac := hmac.New(sha1.New, []byte(authToken))
		mac.Write([]byte(payload))
		return base64.StdEncoding.EncodeToString(mac.Sum(nil))
	}

	tests := []struct {
		name       string
		method     string
		target     string
		signature  string
		wantStatus int
	}{
		{
			name:       "valid post",
			method:     http.MethodPost,
			target:     "/webhooks/whatsapp",
			signature:  sign(baseURL+"/webhooks/whatsapp", form),
			wantStatus: http.StatusOK,
		},
		{
			name:       "valid get with query",
			method:     http.MethodGet,
			target:     "/webhooks/ivr?week=24&lang=hindi",
			signature:  sign(baseURL+"/webhooks/ivr?week=24&lang=hindi", nil),
			wantStatus: http.StatusOK,
		},
		{
			name:       "tampered",
			method:     http.MethodPost,
			target:     "/webhooks/whatsapp",
			signature:  sign(baseURL+"/webhooks/other", form),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing",
			method:     http.MethodPost,
			target:     "/webhooks/whatsapp",
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(TwilioSignature(authToken, baseURL, logging.Discard()))
			r.Any("/webhooks/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

			var req *http.Request
			if tt.method == http.MethodPost {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(form.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			if tt.signature != "" {
				req.Header.Set(twilio.SignatureHeader, tt.signature)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		origins    []string
		origin     string
		method     string
		wantOrigin string
		wantStatus int
	}{
		{"listed origin", []string{"https://dash.example.com"}, "https://dash.example.com", http.MethodGet, "https://dash.example.com", http.StatusOK},
		{"unlisted origin", []string{"https://dash.example.com"}, "https://evil.example.com", http.MethodGet, "", http.StatusOK},
		{"wildcard", []string{"*"}, "https://any.example.com", http.MethodGet, "https://any.example.com", http.StatusOK},
		{"preflight", []string{"https://dash.example.com"}, "https://dash.example.com", http.MethodOptions, "https://dash.example.com", http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(CORS(tt.origins))
			r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })
			r.OPTIONS("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(tt.method, "/api/x", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow origin = %q, want %q", got, tt.wantOrigin)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q", got)
	}
	if got := w.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if got := w.Header().Get("Cache-Control"); got != "" {
		t.Errorf("health Cache-Control = %q, want empty", got)
	}
}

func TestPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(PerIP(NewRateLimiter(rate.Limit(0.001), 2)))
	r.GET("/api/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second ip status = %d, want 200", w.Code)
	}
}

func TestRateLimiter_Evict(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 1)
	rl.Allow("a")
	rl.Allow("b")

	rl.evict(time.Now())
	if rl.size() != 2 {
		t.Fatalf("size = %d, want 2", rl.size())
	}

	rl.evict(time.Now().Add(10 * time.Minute))
	if rl.size() != 0 {
		t.Fatalf("size = %d, want 0 after idle eviction", rl.size())
	}
}

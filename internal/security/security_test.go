package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func TestSecurityConfig(t *testing.T) {
	config := DefaultSecurityConfig()

	assert.Equal(t, 32, config.MaxFactors)
	assert.Equal(t, 64, config.MaxTagLength)
	assert.Equal(t, 30*time.Second, config.RequestTimeout)

	sm := NewSecurityMiddleware(SecurityConfig{})
	assert.Equal(t, config, sm.Config())
}

func TestValidateStudentID(t *testing.T) {
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	tests := []struct {
		name        string
		id          string
		expectError bool
	}{
		{name: "eight digits", id: "12345678"},
		{name: "leading zeros", id: "00000001"},
		{name: "too short", id: "1234567", expectError: true},
		{name: "too long", id: "123456789", expectError: true},
		{name: "letters", id: "1234abcd", expectError: true},
		{name: "path traversal", id: "../12345", expectError: true},
		{name: "empty", id: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sm.ValidateStudentID(tt.id)
			if tt.expectError {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "studentId", vErr.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFactors(t *testing.T) {
	sm := NewSecurityMiddleware(SecurityConfig{MaxFactors: 3, MaxTagLength: 20})

	tests := []struct {
		name     string
		tags     []string
		want     []string
		errField string
	}{
		{name: "empty selection", tags: []string{}, want: []string{}},
		{name: "snake case tags", tags: []string{"declining_grades", "poor_attendance"}, want: []string{"declining_grades", "poor_attendance"}},
		{name: "labels are trimmed", tags: []string{"  Low Engagement "}, want: []string{"Low Engagement"}},
		{name: "too many", tags: []string{"a", "b", "c", "d"}, errField: "factors"},
		{name: "blank tag", tags: []string{"ok", "  "}, errField: "factors[1]"},
		{name: "too long", tags: []string{strings.Repeat("x", 21)}, errField: "factors[0]"},
		{name: "markup", tags: []string{"<script>"}, errField: "factors[0]"},
		{name: "null byte", tags: []string{"bad\x00tag"}, errField: "factors[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sm.ValidateFactors(tt.tags)
			if tt.errField != "" {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, tt.errField, vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateContentType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sm := NewSecurityMiddleware(DefaultSecurityConfig())

	router := gin.New()
	router.Use(sm.ValidateContentType)
	router.POST("/api/assess", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name        string
		contentType string
		body        string
		want        int
	}{
		{name: "json", contentType: "application/json", body: `{}`, want: http.StatusNoContent},
		{name: "json with charset", contentType: "application/json; charset=utf-8", body: `{}`, want: http.StatusNoContent},
		{name: "form", contentType: "application/x-www-form-urlencoded", body: "a=b", want: http.StatusUnsupportedMediaType},
		{name: "no body", contentType: "text/plain", body: "", want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/assess", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestTimeout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sm := NewSecurityMiddleware(SecurityConfig{RequestTimeout: 2 * time.Second})

	router := gin.New()
	router.Use(sm.RequestTimeout)
	router.GET("/", func(c *gin.Context) {
		deadline, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(2*time.Second), deadline, time.Second)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "2", w.Header().Get("X-Timeout"))
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for _, hsts := range []bool{false, true} {
		router := gin.New()
		router.Use(SecurityHeadersMiddleware(hsts))
		router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		assert.Equal(t, hsts, w.Header().Get("Strict-Transport-Security") != "")
	}
}

func TestCSPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var nonce string
	router := gin.New()
	router.Use(CSPMiddleware("/csp-report"))
	router.GET("/", func(c *gin.Context) {
		nonce = GetNonce(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, nonce)
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "'nonce-"+nonce+"'")
	assert.Contains(t, w.Header().Get("Content-Security-Policy-Report-Only"), "report-uri /csp-report")
}

func TestGenerateNonceIsUnique(t *testing.T) {
	a, err := GenerateNonce()
	require.NoError(t, err)
	b, err := GenerateNonce()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestProfileTokens(t *testing.T) {
	_, err := NewProfileTokens("short", time.Hour, false)
	require.Error(t, err)

	tokens, err := NewProfileTokens(testSecret, time.Hour, false)
	require.NoError(t, err)

	profile := uuid.NewString()
	token, err := tokens.Issue(profile)
	require.NoError(t, err)

	got, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, profile, got)

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewProfileTokens("another-secret-0123456789", time.Hour, false)
		require.NoError(t, err)
		_, err = other.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidProfileToken)
	})

	t.Run("expired", func(t *testing.T) {
		tokens.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		defer func() { tokens.now = time.Now }()
		_, err := tokens.Parse(token)
		assert.ErrorIs(t, err, ErrInvalidProfileToken)
	})

	t.Run("non uuid profile", func(t *testing.T) {
		bad, err := tokens.Issue("not-a-uuid")
		require.NoError(t, err)
		_, err = tokens.Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidProfileToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"profile_id": profile})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Parse(raw)
		assert.ErrorIs(t, err, ErrInvalidProfileToken)
	})
}

func TestProfileMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens, err := NewProfileTokens(testSecret, time.Hour, false)
	require.NoError(t, err)

	var seen string
	router := gin.New()
	router.Use(tokens.Middleware())
	router.GET("/", func(c *gin.Context) {
		seen = ProfileID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ProfileCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	first := seen

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, first, seen)
	assert.Empty(t, w.Result().Cookies())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: ProfileCookie, Value: "garbage"})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.NotEqual(t, first, seen)
	assert.Len(t, w.Result().Cookies(), 1)
}

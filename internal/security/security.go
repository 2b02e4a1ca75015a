package security

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/student-risk-meter/internal/errors"
)

// SecurityConfig holds security configuration
type SecurityConfig struct {
	MaxFactors     int           `mapstructure:"max_factors"`
	MaxTagLength   int           `mapstructure:"max_tag_length"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	EnableHSTS     bool          `mapstructure:"enable_hsts"`
	CSPReportURI   string        `mapstructure:"csp_report_uri"`
}

// DefaultSecurityConfig returns secure defaults
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		MaxFactors:     32,
		MaxTagLength:   64,
		RequestTimeout: 30 * time.Second,
	}
}

// ValidationError reports a rejected request field
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

var (
	studentIDPattern = regexp.MustCompile(`^\d{8}$`)
	tagPattern       = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_ \-]*$`)
)

// SecurityMiddleware validates requests and guards handlers
type SecurityMiddleware struct {
	config SecurityConfig
}

// NewSecurityMiddleware creates a new security middleware instance
func NewSecurityMiddleware(config SecurityConfig) *SecurityMiddleware {
	def := DefaultSecurityConfig()
	if config.MaxFactors <= 0 {
		config.MaxFactors = def.MaxFactors
	}
	if config.MaxTagLength <= 0 {
		config.MaxTagLength = def.MaxTagLength
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	return &SecurityMiddleware{config: config}
}

// Config returns the effective configuration
func (sm *SecurityMiddleware) Config() SecurityConfig {
	return sm.config
}

// ValidateStudentID accepts eight-digit student ids
func (sm *SecurityMiddleware) ValidateStudentID(id string) error {
	if !studentIDPattern.MatchString(id) {
		return &ValidationError{Field: "studentId", Reason: "must be exactly 8 digits"}
	}
	return nil
}

// ValidateFactors checks a factor tag selection and returns the trimmed tags
func (sm *SecurityMiddleware) ValidateFactors(tags []string) ([]string, error) {
	if len(tags) > sm.config.MaxFactors {
		return nil, &ValidationError{
			Field:  "factors",
			Reason: fmt.Sprintf("at most %d factors are allowed", sm.config.MaxFactors),
		}
	}

	out := make([]string, 0, len(tags))
	for i, tag := range tags {
		tag = strings.TrimSpace(tag)
		field := fmt.Sprintf("factors[%d]", i)
		switch {
		case tag == "":
			return nil, &ValidationError{Field: field, Reason: "must not be empty"}
		case !utf8.ValidString(tag) || strings.ContainsRune(tag, 0):
			return nil, &ValidationError{Field: field, Reason: "contains invalid characters"}
		case len(tag) > sm.config.MaxTagLength:
			return nil, &ValidationError{
				Field:  field,
				Reason: fmt.Sprintf("exceeds maximum length of %d characters", sm.config.MaxTagLength),
			}
		case !tagPattern.MatchString(tag):
			return nil, &ValidationError{Field: field, Reason: "may only contain letters, digits, spaces, '_' and '-'"}
		}
		out = append(out, tag)
	}
	return out, nil
}

// ValidateContentType rejects request bodies that are not JSON
func (sm *SecurityMiddleware) ValidateContentType(c *gin.Context) {
	if c.Request.ContentLength == 0 || c.Request.Method == http.MethodGet {
		c.Next()
		return
	}

	contentType := strings.ToLower(c.GetHeader("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "application/json") {
		appErr := apperrors.NewValidationError("Unsupported content type", contentType)
		appErr.HTTPStatus = http.StatusUnsupportedMediaType
		apperrors.Respond(c, appErr)
		return
	}

	c.Next()
}

// RequestTimeout bounds the request context
func (sm *SecurityMiddleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sm.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(sm.config.RequestTimeout.Seconds())))

	c.Next()
}

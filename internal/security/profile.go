package security

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ProfileCookie is the cookie carrying the signed profile token
	ProfileCookie = "risk_profile"
	profileKey    = "profile_id"
	profileClaim  = "profile_id"
	tokenIssuer   = "student-risk-meter"
)

// ErrInvalidProfileToken is returned for tokens that fail verification
var ErrInvalidProfileToken = errors.New("invalid profile token")

// ProfileTokens issues and verifies the anonymous profile cookie. The profile
// id scopes a visitor's dashboard session and assessment history.
type ProfileTokens struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

// NewProfileTokens creates an issuer signing with secret. Tokens live for ttl.
func NewProfileTokens(secret string, ttl time.Duration, secure bool) (*ProfileTokens, error) {
	if len(secret) < 16 {
		return nil, fmt.Errorf("jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &ProfileTokens{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}, nil
}

// Issue signs a token for profile
func (p *ProfileTokens) Issue(profile string) (string, error) {
	now := p.now()
	claims := jwt.MapClaims{
		profileClaim: profile,
		"iss":        tokenIssuer,
		"iat":        now.Unix(),
		"exp":        now.Add(p.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign profile token: %w", err)
	}
	return tokenString, nil
}

// Parse verifies a token and returns its profile id
func (p *ProfileTokens) Parse(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidProfileToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidProfileToken
	}
	profile, ok := claims[profileClaim].(string)
	if !ok {
		return "", fmt.Errorf("%w: profile_id missing", ErrInvalidProfileToken)
	}
	if _, err := uuid.Parse(profile); err != nil {
		return "", fmt.Errorf("%w: profile_id is not a uuid", ErrInvalidProfileToken)
	}
	return profile, nil
}

// Middleware resolves the caller's profile from the cookie, issuing a new
// one when the cookie is missing or invalid
func (p *ProfileTokens) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, err := c.Cookie(ProfileCookie); err == nil {
			if profile, err := p.Parse(raw); err == nil {
				c.Set(profileKey, profile)
				c.Next()
				return
			}
			slog.Debug("Discarding invalid profile cookie", "ip", c.ClientIP())
		}

		profile := uuid.NewString()
		token, err := p.Issue(profile)
		if err != nil {
			slog.Error("Failed to issue profile token", "error", err)
			c.Next()
			return
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ProfileCookie, token, int(p.ttl.Seconds()), "/", "", p.secure, true)
		c.Set(profileKey, profile)
		c.Next()
	}
}

// ProfileID returns the profile resolved by the middleware, or ""
func ProfileID(c *gin.Context) string {
	return c.GetString(profileKey)
}

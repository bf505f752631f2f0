package storage

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// URLSigner issues and verifies time-limited signed URLs for private
// storage paths. The token is a JWT carrying the object path, so a URL
// signed for one path cannot be replayed against another.
type URLSigner struct {
	secret  string
	baseURL string
	ttl     time.Duration
}

type urlClaims struct {
	Path string `json:"path"`
	jwt.RegisteredClaims
}

func NewURLSigner(secret, baseURL string, ttl time.Duration) *URLSigner {
	return &URLSigner{
		secret:  secret,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
	}
}

// Sign returns a URL granting temporary read access to path.
func (s *URLSigner) Sign(path string) (string, error) {
	now := time.Now()
	claims := urlClaims{
		Path: path,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign url token: %w", err)
	}

	escaped := escapePath(path)
	return fmt.Sprintf("%s/api/v1/files/%s?token=%s", s.baseURL, escaped, url.QueryEscape(signed)), nil
}

// Verify checks the token and that it was issued for path.
func (s *URLSigner) Verify(tokenString, path string) error {
	token, err := jwt.ParseWithClaims(tokenString, &urlClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return fmt.Errorf("invalid url token: %w", err)
	}

	claims, ok := token.Claims.(*urlClaims)
	if !ok || !token.Valid {
		return fmt.Errorf("invalid url token claims")
	}

	if claims.Path != path {
		return fmt.Errorf("url token issued for a different path")
	}

	return nil
}

// TTL reports the validity window of issued URLs.
func (s *URLSigner) TTL() time.Duration {
	return s.ttl
}

// escapePath escapes each path segment while keeping separators.
func escapePath(p string) string {
	segments := strings.Split(p, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"mcq-quiz-service/internal/domain"

	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Claims carried in admin tokens.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies admin JWTs. There is a single
// administrator account, configured by email and bcrypt password hash.
type Authenticator struct {
	secret     []byte
	adminEmail string
	adminHash  []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewAuthenticator(secret, adminEmail, adminPasswordHash string, tokenTTL time.Duration) *Authenticator {
	return &Authenticator{
		secret:     []byte(secret),
		adminEmail: adminEmail,
		adminHash:  []byte(adminPasswordHash),
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

// Login checks the admin credentials and returns a signed token.
func (a *Authenticator) Login(email, password string) (string, error) {
	if email != a.adminEmail {
		return "", domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(a.adminHash, []byte(password)); err != nil {
		return "", domain.ErrUnauthorized
	}
	now := a.now()
	claims := Claims{
		Email: email,
		Role:  "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

func (a *Authenticator) verify(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// RequireAdmin guards a handler behind a valid admin token read from the
// Authorization header.
func (a *Authenticator) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.requireAdmin(next, false)
}

// RequireAdminFeed additionally accepts the token query parameter, for
// websocket clients that cannot set headers. Regular routes stay header-only
// so tokens never show up in access-logged URLs.
func (a *Authenticator) RequireAdminFeed(next http.HandlerFunc) http.HandlerFunc {
	return a.requireAdmin(next, true)
}

func (a *Authenticator) requireAdmin(next http.HandlerFunc, allowQueryToken bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" && allowQueryToken {
			raw = r.URL.Query().Get("token")
		}
		if raw == "" {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "No token, authorization denied"})
			return
		}
		claims, err := a.verify(raw)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "Token is invalid"})
			return
		}
		if claims.Role != "admin" {
			writeJSON(w, http.StatusForbidden, messageResponse{Message: "Not authorized"})
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
)

const CapabilityManagePayments = "rcp_manage_payments"

var (
	ErrNoSession      = errors.New("no session")
	ErrInvalidSession = errors.New("invalid session")
)

// Session is the authenticated member behind a request.
type Session struct {
	UserID       uint64
	Capabilities []string
}

func (s *Session) Can(capability string) bool {
	if s == nil {
		return false
	}
	for _, c := range s.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

type Claims struct {
	UserID       uint64   `json:"user_id"`
	Capabilities []string `json:"caps,omitempty"`
	jwt.StandardClaims
}

// SessionResolver validates HS256 session tokens issued by the host site.
// Tokens are read from the session cookie or a bearer Authorization header.
type SessionResolver struct {
	secret     []byte
	cookieName string
}

func NewSessionResolver(secret, cookieName string) *SessionResolver {
	return &SessionResolver{secret: []byte(secret), cookieName: cookieName}
}

func (r *SessionResolver) Resolve(req *http.Request) (*Session, error) {
	token := r.tokenFromRequest(req)
	if token == "" {
		return nil, ErrNoSession
	}
	if len(r.secret) == 0 {
		return nil, ErrInvalidSession
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSession
	}
	if claims.UserID == 0 {
		return nil, ErrInvalidSession
	}

	return &Session{UserID: claims.UserID, Capabilities: claims.Capabilities}, nil
}

func (r *SessionResolver) Issue(userID uint64, capabilities []string, ttl time.Duration) (string, error) {
	if len(r.secret) == 0 {
		return "", errors.New("empty signing key")
	}
	claims := Claims{
		UserID:       userID,
		Capabilities: capabilities,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			Subject:   fmt.Sprintf("%d", userID),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}

func (r *SessionResolver) tokenFromRequest(req *http.Request) string {
	if header := strings.TrimSpace(req.Header.Get("Authorization")); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if r.cookieName == "" {
		return ""
	}
	cookie, err := req.Cookie(r.cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

package security

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenMissing = errors.New("context token missing")
	ErrTokenInvalid = errors.New("context token invalid")
)

// ContextSigner issues and verifies browser context tokens. A token only
// names a context id; the session behind it lives in the session store.
type ContextSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewContextSigner(secret, issuer string, ttl time.Duration) *ContextSigner {
	return &ContextSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

type contextClaims struct {
	ContextID string `json:"cid"`
	jwt.RegisteredClaims
}

// Issue mints a token for a fresh context id.
func (s *ContextSigner) Issue() (token, contextID string, err error) {
	contextID = uuid.NewString()
	token, err = s.Sign(contextID)
	return token, contextID, err
}

func (s *ContextSigner) Sign(contextID string) (string, error) {
	now := s.now()
	claims := contextClaims{
		ContextID: contextID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *ContextSigner) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrTokenMissing
	}
	parsed, err := jwt.ParseWithClaims(token, &contextClaims{}, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*contextClaims)
	if !ok || !parsed.Valid || claims.ContextID == "" {
		return "", ErrTokenInvalid
	}
	return claims.ContextID, nil
}

func (s *ContextSigner) TTL() time.Duration { return s.ttl }

// ReadContextToken takes the bearer header first, then the named cookie.
func ReadContextToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

func SetContextCookie(w http.ResponseWriter, name, token string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
}

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const SessionCookieName = "vp_session"

// SessionCookies binds a browser to a conversation. The cookie carries an HS256 token whose
// subject is the session id; a missing, expired or forged token starts a new session.
type SessionCookies struct {
	secret []byte
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewSessionCookies(secret string, ttl time.Duration, secure bool) *SessionCookies {
	return &SessionCookies{
		secret: []byte(secret),
		ttl:    ttl,
		secure: secure,
		now:    time.Now,
	}
}

// Resolve returns the session id for r and refreshes the cookie on w.
func (c *SessionCookies) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	sessionID := ""
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if id, err := c.parse(cookie.Value); err == nil {
			sessionID = id
		}
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	token, err := c.sign(sessionID)
	if err != nil {
		return "", err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return sessionID, nil
}

func (c *SessionCookies) sign(sessionID string) (string, error) {
	now := c.now()
	claims := jwt.RegisteredClaims{
		Subject:   sessionID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (c *SessionCookies) parse(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.now))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid session token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("invalid session subject: %w", err)
	}
	return claims.Subject, nil
}

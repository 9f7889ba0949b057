// Package auth issues and verifies the bearer tokens handed out at login
package auth

import (
	"net/http"
	"strings"
	"time"

	"kydu/internal/platform/config"
	perr "kydu/internal/platform/errors"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is how long a login token stays valid
const DefaultTTL = 30 * 24 * time.Hour

// Claims is the token body; userId is the only private claim
type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Tokens signs and checks HS256 tokens with one shared secret
type Tokens struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// New returns a Tokens; a non-positive ttl means DefaultTTL
func New(secret string, ttl time.Duration, issuer string) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, issuer: issuer, now: time.Now}
}

// FromConfig reads JWT_SECRET, TOKEN_TTL and ISSUER from an AUTH_ view
func FromConfig(c config.Conf) *Tokens {
	return New(
		c.MustSecret("JWT_SECRET", 32),
		c.MayDuration("TOKEN_TTL", DefaultTTL),
		c.MayString("ISSUER", "kydu"),
	)
}

// Issue signs a token for userID and returns it with its expiry
func (t *Tokens) Issue(userID string) (string, time.Time, error) {
	if strings.TrimSpace(userID) == "" {
		return "", time.Time{}, perr.InvalidArgf("user id is required")
	}
	now := t.now()
	exp := now.Add(t.ttl)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := tok.SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, perr.Wrap(err, perr.ErrorCodeUnknown, "sign token")
	}
	return signed, exp, nil
}

// Verify checks signature, algorithm, issuer and expiry and returns the user id.
// Every failure is Unauthorized; the cause stays on the error for logs.
func (t *Tokens) Verify(credential string) (string, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return "", perr.Unauthorizedf("missing credential")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(credential, &claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, perr.Unauthorizedf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, opts...)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnauthorized, "invalid credential")
	}
	if !token.Valid || claims.UserID == "" {
		return "", perr.Unauthorizedf("invalid credential")
	}
	return claims.UserID, nil
}

// Credential extracts a bearer token from the Authorization header, falling
// back to the token query parameter browsers use for websocket upgrades
func Credential(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrExpired marks a well-formed, correctly signed token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrMalformed marks input that is not a token at all.
	ErrMalformed = errors.New("token malformed")
	// ErrSignatureInvalid marks a token signed with the wrong key, including
	// a token of the other class presented to this verifier.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrNoSigningKey is returned by the issue operations when the secret
	// for the requested token class is missing.
	ErrNoSigningKey = errors.New("signing key unavailable")
)

// AccessClaims travel inside short-lived access tokens. Subject carries the
// user id.
type AccessClaims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	jwt.RegisteredClaims
}

// RefreshClaims deliberately omit roles: they are re-resolved from the store
// at refresh time so role changes do not outlive the access token.
type RefreshClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Config is fixed at startup and never mutated afterwards. Access and
// refresh tokens are signed with independent secrets.
type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type Issuer struct {
	cfg Config
	now func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{cfg: cfg, now: time.Now}
}

// WithClock overrides the issuer's clock, for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

func (i *Issuer) AccessTTL() time.Duration  { return i.cfg.AccessTTL }
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTTL }

func (i *Issuer) IssueAccessToken(userID, username string, roles []string) (string, time.Time, error) {
	if len(i.cfg.AccessSecret) == 0 {
		return "", time.Time{}, ErrNoSigningKey
	}
	exp := i.now().Add(i.cfg.AccessTTL)
	claims := AccessClaims{
		Username: username,
		Roles:    roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.AccessSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrNoSigningKey, err)
	}
	return token, exp, nil
}

func (i *Issuer) IssueRefreshToken(userID, username string) (string, time.Time, error) {
	if len(i.cfg.RefreshSecret) == 0 {
		return "", time.Time{}, ErrNoSigningKey
	}
	exp := i.now().Add(i.cfg.RefreshTTL)
	claims := RefreshClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(i.now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.RefreshSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("%w: %v", ErrNoSigningKey, err)
	}
	return token, exp, nil
}

// VerifyAccess checks signature and expiry against the access secret.
// Pure function of (token, clock, secret): safe for concurrent use.
func (i *Issuer) VerifyAccess(tokenStr string) (*AccessClaims, error) {
	var claims AccessClaims
	if err := i.verify(tokenStr, &claims, i.cfg.AccessSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

// VerifyRefresh is the refresh-class counterpart of VerifyAccess. An access
// token presented here fails as ErrSignatureInvalid.
func (i *Issuer) VerifyRefresh(tokenStr string) (*RefreshClaims, error) {
	var claims RefreshClaims
	if err := i.verify(tokenStr, &claims, i.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	return &claims, nil
}

func (i *Issuer) verify(tokenStr string, claims jwt.Claims, secret []byte) error {
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return classify(err)
	}
	if !tkn.Valid {
		return ErrMalformed
	}
	return nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// PrincipalClaims represent the subset of JWT claims we care about.
type PrincipalClaims struct {
	Subject   string
	Issuer    string
	Audience  []string
	Email     string
	Name      string
	ExpiresAt time.Time
	IssuedAt  time.Time
	NotBefore time.Time
	TokenID   string
}

// JWTValidator validates bearer tokens against the identity provider's JWKS.
type JWTValidator struct {
	issuer       string
	audience     string
	jwksURL      string
	logger       zerolog.Logger
	refreshEvery time.Duration
	clockSkew    time.Duration
	jwks         atomic.Pointer[keyfunc.JWKS]
	lastErr      atomic.Value // stores lastErrWrap
}

// lastErrWrap is a sentinel wrapper to avoid storing bare nil in atomic.Value.
type lastErrWrap struct{ Err error }

const (
	jwksInitialRetryInterval   = time.Second
	jwksInitialRetryMaxBackoff = 10 * time.Second
	jwksInitialRetryTimeout    = 2 * time.Minute
)

// NewJWTValidator initialises JWKS fetching and returns a validator.
func NewJWTValidator(
	ctx context.Context,
	jwksURL,
	issuer,
	audience string,
	refreshEvery,
	clockSkew time.Duration,
	logger zerolog.Logger,
) (*JWTValidator, error) {
	if jwksURL == "" {
		return nil, errors.New("jwks url is required")
	}

	validator := &JWTValidator{
		issuer:       issuer,
		audience:     audience,
		jwksURL:      jwksURL,
		logger:       logger,
		refreshEvery: refreshEvery,
		clockSkew:    clockSkew,
	}
	validator.lastErr.Store(lastErrWrap{Err: nil})

	if err := validator.initJWKS(ctx); err != nil {
		return nil, err
	}
	return validator, nil
}

func (v *JWTValidator) initJWKS(ctx context.Context) error {
	options := keyfunc.Options{
		RefreshErrorHandler: func(err error) {
			v.lastErr.Store(lastErrWrap{Err: err})
			if err != nil {
				v.logger.Error().Err(err).Msg("jwks refresh failed")
			}
		},
		RefreshInterval:   v.refreshEvery,
		RefreshUnknownKID: true,
	}
	if ctx != nil {
		options.Ctx = ctx
	}

	backoff := jwksInitialRetryInterval
	deadline := time.Now().Add(jwksInitialRetryTimeout)
	if ctx != nil {
		if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
			deadline = ctxDeadline
		}
	}

	for attempt := 1; ; attempt++ {
		jwks, err := keyfunc.Get(v.jwksURL, options)
		if err == nil {
			v.lastErr.Store(lastErrWrap{Err: nil})
			v.jwks.Store(jwks)
			return nil
		}

		v.logger.Warn().
			Err(err).
			Str("jwks_url", v.jwksURL).
			Int("attempt", attempt).
			Msg("initial jwks fetch failed, retrying")

		if ctx != nil {
			select {
			case <-ctx.Done():
				return fmt.Errorf("fetch jwks: %w", ctx.Err())
			case <-time.After(backoff):
			}
		} else {
			time.Sleep(backoff)
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("fetch jwks: %w", err)
		}

		if next := backoff * 2; next <= jwksInitialRetryMaxBackoff {
			backoff = next
		} else {
			backoff = jwksInitialRetryMaxBackoff
		}
	}
}

// Validate parses and validates the given JWT returning principal claims.
func (v *JWTValidator) Validate(_ context.Context, rawToken string) (*PrincipalClaims, error) {
	jwks := v.jwks.Load()
	if jwks == nil {
		return nil, errors.New("jwks not initialised")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{"RS256"}))
	token, err := parser.ParseWithClaims(rawToken, jwt.MapClaims{}, jwks.Keyfunc)
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid claims")
	}

	iss, _ := mapClaims["iss"].(string)
	if iss != v.issuer {
		return nil, fmt.Errorf("issuer mismatch %s", iss)
	}

	var audiences []string
	if audRaw, ok := mapClaims["aud"]; ok {
		switch val := audRaw.(type) {
		case string:
			if val != v.audience {
				return nil, errors.New("audience mismatch")
			}
			audiences = append(audiences, val)
		case []interface{}:
			found := false
			for _, item := range val {
				if s, ok := item.(string); ok {
					if s == v.audience {
						found = true
					}
					audiences = append(audiences, s)
				}
			}
			if !found {
				return nil, errors.New("audience mismatch")
			}
		default:
			return nil, fmt.Errorf("aud claim unsupported type %T", val)
		}
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, errors.New("sub claim missing")
	}

	email, _ := mapClaims["email"].(string)
	name, _ := mapClaims["name"].(string)

	expires := jwtNumericTime(mapClaims["exp"])
	issued := jwtNumericTime(mapClaims["iat"])
	notBefore := jwtNumericTime(mapClaims["nbf"])

	now := time.Now().UTC()
	if !expires.IsZero() && now.After(expires.Add(v.clockSkew)) {
		return nil, errors.New("token expired")
	}
	if !notBefore.IsZero() && now.Add(v.clockSkew).Before(notBefore) {
		return nil, errors.New("token not yet valid")
	}

	return &PrincipalClaims{
		Subject:   sub,
		Issuer:    iss,
		Audience:  audiences,
		Email:     email,
		Name:      name,
		ExpiresAt: expires,
		IssuedAt:  issued,
		NotBefore: notBefore,
		TokenID:   claimString(mapClaims["jti"]),
	}, nil
}

// Ready indicates whether JWKS has been successfully loaded.
func (v *JWTValidator) Ready() bool {
	if v.jwks.Load() == nil {
		return false
	}
	if val := v.lastErr.Load(); val != nil {
		if wrap, ok := val.(lastErrWrap); ok && wrap.Err != nil {
			return false
		}
	}
	return true
}

func jwtNumericTime(value any) time.Time {
	switch timeValue := value.(type) {
	case float64:
		return time.Unix(int64(timeValue), 0).UTC()
	case int64:
		return time.Unix(timeValue, 0).UTC()
	case json.Number:
		if unixTime, err := timeValue.Int64(); err == nil {
			return time.Unix(unixTime, 0).UTC()
		}
	}
	return time.Time{}
}

func claimString(value any) string {
	if str, ok := value.(string); ok {
		return str
	}
	return ""
}

package transform

import (
	"encoding/base64"
	"fmt"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"

	"github.com/kbukum/reqkit/request"
)

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthBearer uses Bearer token authentication.
	AuthBearer
	// AuthBasic uses HTTP Basic authentication.
	AuthBasic
	// AuthAPIKey uses API key authentication (header or query parameter).
	AuthAPIKey
	// AuthJWT signs a fresh JWT for every request and sends it as a bearer token.
	AuthJWT
)

const headerAuthorization = "Authorization"

// AuthConfig configures request authentication.
type AuthConfig struct {
	// Type is the authentication method.
	Type AuthType
	// Token is the bearer token (AuthBearer).
	Token string
	// Username is the basic auth username (AuthBasic).
	Username string
	// Password is the basic auth password (AuthBasic).
	Password string
	// Key is the API key value (AuthAPIKey).
	Key string
	// In specifies where to place the API key: "header" (default) or "query" (AuthAPIKey).
	In string
	// Name is the header or query parameter name (AuthAPIKey). Defaults to "X-API-Key".
	Name string
	// JWT configures token signing (AuthJWT).
	JWT *JWTConfig
}

// BearerAuth creates a bearer token auth config.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Token: token}
}

// BasicAuth creates a basic auth config.
func BasicAuth(username, password string) *AuthConfig {
	return &AuthConfig{Type: AuthBasic, Username: username, Password: password}
}

// APIKeyAuth creates an API key auth config sent via header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: "X-API-Key"}
}

// APIKeyAuthHeader creates an API key auth config with a custom header name.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "header", Name: headerName}
}

// APIKeyAuthQuery creates an API key auth config sent via query parameter.
func APIKeyAuthQuery(key, paramName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Key: key, In: "query", Name: paramName}
}

// SignedJWT creates an auth config minting a signed token per request.
func SignedJWT(cfg JWTConfig) *AuthConfig {
	cfg.applyDefaults()
	return &AuthConfig{Type: AuthJWT, JWT: &cfg}
}

// Hook returns a header hook setting the auth header on every dispatch,
// whatever the method. A signed JWT is minted per call. Query API keys are
// not handled here since the URL is resolved before hooks run; use Apply.
func (a *AuthConfig) Hook() request.HeaderHook {
	return a.setHeader
}

// Apply adds authentication to cfg and returns it: query API keys go to
// Params, every other type is appended to HeaderHooks. A JWT config is
// signed once here so a bad key fails before the first dispatch.
func (a *AuthConfig) Apply(cfg *request.Config) (*request.Config, error) {
	if a == nil || a.Type == AuthNone {
		return cfg, nil
	}
	if a.Type == AuthAPIKey && a.In == "query" {
		if cfg.Params == nil {
			cfg.Params = make(map[string]any, 1)
		}
		cfg.Params[a.keyName()] = a.Key
		return cfg, nil
	}
	if a.Type == AuthJWT {
		if _, err := a.JWT.Sign(); err != nil {
			return nil, err
		}
	}
	cfg.HeaderHooks = append(cfg.HeaderHooks, a.Hook())
	return cfg, nil
}

func (a *AuthConfig) setHeader(h request.Header) error {
	if a == nil || h == nil {
		return nil
	}
	switch a.Type {
	case AuthBearer:
		h.Set(headerAuthorization, "Bearer "+a.Token)
	case AuthBasic:
		h.Set(headerAuthorization, "Basic "+basicCredentials(a.Username, a.Password))
	case AuthAPIKey:
		if a.In != "query" {
			h.Set(a.keyName(), a.Key)
		}
	case AuthJWT:
		token, err := a.JWT.Sign()
		if err != nil {
			return err
		}
		h.Set(headerAuthorization, "Bearer "+token)
	}
	return nil
}

func (a *AuthConfig) keyName() string {
	if a.Name == "" {
		return "X-API-Key"
	}
	return a.Name
}

func basicCredentials(username, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
}

// JWTConfig configures SignedJWT.
type JWTConfig struct {
	// Secret is the HMAC signing key (HS* methods).
	Secret string
	// PrivateKey is the RSA or ECDSA private key (RS*/ES* methods).
	PrivateKey any
	// Method is the signing algorithm (default: HS256).
	Method string
	// Issuer is the "iss" claim (optional).
	Issuer string
	// Subject is the "sub" claim (optional).
	Subject string
	// Audience is the "aud" claim (optional).
	Audience []string
	// TTL is the token lifetime (default: 5m).
	TTL time.Duration
	// Claims are extra claims merged into every token.
	Claims map[string]any

	now func() time.Time
}

func (c *JWTConfig) applyDefaults() {
	if c.Method == "" {
		c.Method = gojwt.SigningMethodHS256.Alg()
	}
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.now == nil {
		c.now = time.Now
	}
}

// Sign mints a token valid for TTL from now. Sign does not modify c and is
// safe for concurrent use.
func (c *JWTConfig) Sign() (string, error) {
	if c == nil {
		return "", fmt.Errorf("jwt: no signing config")
	}
	d := *c
	d.applyDefaults()
	method := gojwt.GetSigningMethod(d.Method)
	if method == nil {
		return "", fmt.Errorf("jwt: unsupported signing method %q", d.Method)
	}

	now := d.now()
	claims := gojwt.MapClaims{}
	for k, v := range c.Claims {
		claims[k] = v
	}
	claims["iat"] = gojwt.NewNumericDate(now)
	claims["exp"] = gojwt.NewNumericDate(now.Add(d.TTL))
	if c.Issuer != "" {
		claims["iss"] = c.Issuer
	}
	if c.Subject != "" {
		claims["sub"] = c.Subject
	}
	if len(c.Audience) > 0 {
		claims["aud"] = gojwt.ClaimStrings(c.Audience)
	}

	signed, err := gojwt.NewWithClaims(method, claims).SignedString(c.signKey(method))
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

func (c *JWTConfig) signKey(method gojwt.SigningMethod) any {
	if _, ok := method.(*gojwt.SigningMethodHMAC); ok {
		return []byte(c.Secret)
	}
	return c.PrivateKey
}

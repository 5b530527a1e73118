package httpclient

import "net/http"

// APIKeyHeader is the header opkit services read API keys from.
const APIKeyHeader = "Api-Key"

// AuthType identifies the authentication method.
type AuthType int

const (
	// AuthNone disables authentication.
	AuthNone AuthType = iota
	// AuthAPIKey sends a key in a header.
	AuthAPIKey
	// AuthBearer sends a bearer token.
	AuthBearer
	// AuthHeader sends a raw Authorization header value.
	AuthHeader
)

// AuthConfig configures request authentication.
type AuthConfig struct {
	Type AuthType
	// Value is the key, token or raw header value.
	Value string
	// Name is the header used by AuthAPIKey. Defaults to APIKeyHeader.
	Name string
}

// APIKeyAuth sends key in the Api-Key header.
func APIKeyAuth(key string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Value: key, Name: APIKeyHeader}
}

// APIKeyAuthHeader sends key in a custom header.
func APIKeyAuthHeader(key, headerName string) *AuthConfig {
	return &AuthConfig{Type: AuthAPIKey, Value: key, Name: headerName}
}

// BearerAuth sends "Bearer <token>" as Authorization.
func BearerAuth(token string) *AuthConfig {
	return &AuthConfig{Type: AuthBearer, Value: token}
}

// AuthorizationHeader forwards value verbatim as Authorization.
func AuthorizationHeader(value string) *AuthConfig {
	return &AuthConfig{Type: AuthHeader, Value: value}
}

// apply sets the credentials on req. Empty values are not sent.
func (a *AuthConfig) apply(req *http.Request) {
	if a == nil || a.Value == "" {
		return
	}
	switch a.Type {
	case AuthAPIKey:
		name := a.Name
		if name == "" {
			name = APIKeyHeader
		}
		req.Header.Set(name, a.Value)
	case AuthBearer:
		req.Header.Set("Authorization", "Bearer "+a.Value)
	case AuthHeader:
		req.Header.Set("Authorization", a.Value)
	}
}

package strapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/custodia-labs/strapisync/internal/core/domain"
	"github.com/custodia-labs/strapisync/internal/core/ports/driven"
)

const loginPath = "/api/auth/local"

// Ensure Authenticator implements the interface.
var _ driven.Authenticator = (*Authenticator)(nil)

// Authenticator resolves the bearer token for a source.
type Authenticator struct {
	timeout time.Duration
}

// NewAuthenticator creates an Authenticator.
func NewAuthenticator() *Authenticator {
	return &Authenticator{timeout: DefaultTimeout}
}

// Authenticate returns the static access token when set, otherwise logs in
// with the configured credentials. With neither it returns "".
func (a *Authenticator) Authenticate(ctx context.Context, source domain.Source) (string, error) {
	if source.AccessToken != "" {
		return source.AccessToken, nil
	}
	if !source.Login.IsSet() {
		return "", nil
	}

	resp, err := resty.New().
		SetBaseURL(source.BaseURL()).
		SetTimeout(a.timeout).
		R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{
			"identifier": source.Login.Identifier,
			"password":   source.Login.Password,
		}).
		Post(loginPath)
	if err != nil {
		return "", fmt.Errorf("login %s: %w", source.Name, err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
		return "", fmt.Errorf("login %s: %w", source.Name, domain.ErrAuthInvalid)
	default:
		return "", fmt.Errorf("login %s: %w", source.Name, responseError(resp))
	}

	jwt := gjson.GetBytes(resp.Body(), "jwt").String()
	if jwt == "" {
		return "", fmt.Errorf("login %s: response has no jwt", source.Name)
	}
	return jwt, nil
}

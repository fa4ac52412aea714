package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	apperrors "github.com/dealgrid/vendorsync/internal/errors"
)

// ManagementClientConfig configures the remote management API client.
type ManagementClientConfig struct {
	// BaseURL is the root of the provider's management API, e.g.
	// "https://tenant.idp.example.com/api/v2".
	BaseURL string
	// TokenURL is the OAuth2 token endpoint used for client credentials.
	TokenURL string
	// ClientID and ClientSecret authenticate this service against the
	// management API.
	ClientID     string
	ClientSecret string
	// Timeout bounds every management API call. Zero selects a default.
	Timeout time.Duration
}

// ManagementClient talks to the identity provider's management API over HTTP.
// Tokens are obtained through the OAuth2 client credentials flow and refreshed
// transparently by the underlying token source.
type ManagementClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewManagementClient creates a ManagementClient from config.
func NewManagementClient(cfg ManagementClientConfig) (*ManagementClient, error) {
	if cfg.BaseURL == "" || cfg.TokenURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, apperrors.New("identity: management client config incomplete")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	oauthCfg := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}

	httpClient := oauthCfg.Client(context.Background())
	httpClient.Timeout = timeout

	return &ManagementClient{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// identityPayload is the wire shape of an identity record.
type identityPayload struct {
	ID       string            `json:"id,omitempty"`
	Email    string            `json:"email,omitempty"`
	Phone    string            `json:"phone,omitempty"`
	Password string            `json:"password,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// CreateIdentity registers a new identity via POST /identities.
func (c *ManagementClient) CreateIdentity(ctx context.Context, input CreateIdentityInput) (string, error) {
	payload := identityPayload{
		Email:    input.Email,
		Phone:    input.Phone,
		Password: input.Password,
		Metadata: input.Metadata,
	}

	var created identityPayload
	if err := c.do(ctx, http.MethodPost, "/identities", payload, &created); err != nil {
		return "", err
	}

	if created.ID == "" {
		return "", apperrors.New("identity: provider returned empty identity id")
	}

	return created.ID, nil
}

// UpdateIdentity applies a partial update via PATCH /identities/{id}.
func (c *ManagementClient) UpdateIdentity(ctx context.Context, identityID string, update UpdateIdentityInput) error {
	payload := identityPayload{Metadata: update.Metadata}
	if update.Email != nil {
		payload.Email = *update.Email
	}
	if update.Phone != nil {
		payload.Phone = *update.Phone
	}
	if update.Password != nil {
		payload.Password = *update.Password
	}

	return c.do(ctx, http.MethodPatch, "/identities/"+identityID, payload, nil)
}

// DeleteIdentity removes an identity via DELETE /identities/{id}.
func (c *ManagementClient) DeleteIdentity(ctx context.Context, identityID string) error {
	return c.do(ctx, http.MethodDelete, "/identities/"+identityID, nil, nil)
}

// do executes one management API call and maps the response status onto the
// provider error taxonomy.
func (c *ManagementClient) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody *bytes.Buffer
	if body != nil {
		reqBody = &bytes.Buffer{}
		if err := json.NewEncoder(reqBody).Encode(body); err != nil {
			return apperrors.Wrap(err, "identity: encode request")
		}
	}

	var req *http.Request
	var err error
	if reqBody != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return apperrors.Wrap(err, "identity: new request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		// Network failures and timeouts are retriable from the caller's
		// perspective; a timed-out write is a failure, never an assumed success.
		return apperrors.Wrap(ErrProviderUnavailable, err.Error())
	}
	defer res.Body.Close() //nolint:errcheck

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		if out != nil {
			if err := json.NewDecoder(res.Body).Decode(out); err != nil {
				return apperrors.Wrap(err, "identity: decode response")
			}
		}
		return nil
	case res.StatusCode == http.StatusNotFound:
		return ErrIdentityNotFound
	case res.StatusCode == http.StatusConflict:
		return ErrIdentityExists
	case res.StatusCode >= 500:
		return apperrors.Wrap(ErrProviderUnavailable, fmt.Sprintf("status %d", res.StatusCode))
	default:
		return apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("identity: provider rejected request with status %d", res.StatusCode),
		)
	}
}

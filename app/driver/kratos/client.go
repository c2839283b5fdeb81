package kratos

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	kratosclient "github.com/ory/kratos-client-go"

	"github.com/aisandler/marketing-calendar-saas-sub001/app/config"
	"github.com/aisandler/marketing-calendar-saas-sub001/app/domain"
)

// defaultSessionLifetime is assumed when the backend omits an expiry.
const defaultSessionLifetime = 24 * time.Hour

// Client wraps the Kratos public and admin APIs and implements
// port.CredentialClient. It keeps custody of the session token: the rest of
// the application only ever sees domain.Session references.
type Client struct {
	publicAPI *kratosclient.APIClient
	adminAPI  *kratosclient.APIClient
	logger    *slog.Logger

	mu           sync.Mutex
	sessionToken string
	sessionID    string
}

// NewClient creates a new Kratos client from configuration
func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if !isValidURL(cfg.KratosPublicURL) {
		return nil, fmt.Errorf("invalid Kratos public URL: %s", cfg.KratosPublicURL)
	}
	if !isValidURL(cfg.KratosAdminURL) {
		return nil, fmt.Errorf("invalid Kratos admin URL: %s", cfg.KratosAdminURL)
	}

	publicConfig := kratosclient.NewConfiguration()
	publicConfig.Servers = []kratosclient.ServerConfiguration{{URL: cfg.KratosPublicURL}}
	publicConfig.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	adminConfig := kratosclient.NewConfiguration()
	adminConfig.Servers = []kratosclient.ServerConfiguration{{URL: cfg.KratosAdminURL}}
	adminConfig.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	logger.Info("Kratos client initialized",
		"public_url", cfg.KratosPublicURL,
		"admin_url", cfg.KratosAdminURL)

	return &Client{
		publicAPI: kratosclient.NewAPIClient(publicConfig),
		adminAPI:  kratosclient.NewAPIClient(adminConfig),
		logger:    logger.With("component", "kratos"),
	}, nil
}

// PasswordLogin performs a native login flow with the password method
func (c *Client) PasswordLogin(ctx context.Context, email, password string) (*domain.Session, error) {
	flow, _, err := c.publicAPI.FrontendAPI.CreateNativeLoginFlow(ctx).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to create login flow: %w", err)
	}

	body := kratosclient.UpdateLoginFlowWithPasswordMethodAsUpdateLoginFlowBody(
		&kratosclient.UpdateLoginFlowWithPasswordMethod{
			Method:     "password",
			Identifier: email,
			Password:   password,
		})

	result, resp, err := c.publicAPI.FrontendAPI.UpdateLoginFlow(ctx).
		Flow(flow.Id).
		UpdateLoginFlowBody(body).
		Execute()
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to submit login flow: %w", err)
	}

	c.mu.Lock()
	if result.SessionToken != nil {
		c.sessionToken = *result.SessionToken
	}
	c.sessionID = result.Session.Id
	c.mu.Unlock()

	return toDomainSession(&result.Session), nil
}

// Register performs a native registration flow and returns the new subject id
func (c *Client) Register(ctx context.Context, email, password string, traits map[string]interface{}) (string, error) {
	flow, _, err := c.publicAPI.FrontendAPI.CreateNativeRegistrationFlow(ctx).Execute()
	if err != nil {
		return "", fmt.Errorf("failed to create registration flow: %w", err)
	}

	allTraits := map[string]interface{}{"email": email}
	for k, v := range traits {
		allTraits[k] = v
	}

	body := kratosclient.UpdateRegistrationFlowWithPasswordMethodAsUpdateRegistrationFlowBody(
		&kratosclient.UpdateRegistrationFlowWithPasswordMethod{
			Method:   "password",
			Password: password,
			Traits:   allTraits,
		})

	result, resp, err := c.publicAPI.FrontendAPI.UpdateRegistrationFlow(ctx).
		Flow(flow.Id).
		UpdateRegistrationFlowBody(body).
		Execute()
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusBadRequest {
			return "", domain.ErrCredentialExists
		}
		return "", fmt.Errorf("failed to submit registration flow: %w", err)
	}

	c.mu.Lock()
	if result.SessionToken != nil {
		c.sessionToken = *result.SessionToken
	}
	if result.Session != nil {
		c.sessionID = result.Session.Id
	}
	c.mu.Unlock()

	return result.Identity.Id, nil
}

// DeleteIdentity removes a credential via the admin API (sign-up compensation)
func (c *Client) DeleteIdentity(ctx context.Context, subjectID string) error {
	resp, err := c.adminAPI.IdentityAPI.DeleteIdentity(ctx, subjectID).Execute()
	if err != nil {
		return fmt.Errorf("failed to delete identity %s: %w", subjectID, err)
	}
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("unexpected status deleting identity %s: %d", subjectID, resp.StatusCode)
	}
	return nil
}

// WhoAmI checks whether the held token still maps to a live session
func (c *Client) WhoAmI(ctx context.Context) (*domain.Session, error) {
	token := c.token()
	if token == "" {
		return nil, nil
	}

	session, resp, err := c.publicAPI.FrontendAPI.ToSession(ctx).
		XSessionToken(token).
		Execute()
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			// Token no longer valid: a definitive "no session", not an error.
			c.forget()
			return nil, nil
		}
		return nil, fmt.Errorf("failed to check session: %w", err)
	}

	c.mu.Lock()
	c.sessionID = session.Id
	c.mu.Unlock()

	return toDomainSession(session), nil
}

// ExtendSession renews the current session via the admin API
func (c *Client) ExtendSession(ctx context.Context) (*domain.Session, error) {
	c.mu.Lock()
	sessionID := c.sessionID
	c.mu.Unlock()

	if sessionID == "" {
		return nil, domain.ErrNoSession
	}

	session, _, err := c.adminAPI.IdentityAPI.ExtendSession(ctx, sessionID).Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to extend session %s: %w", sessionID, err)
	}

	return toDomainSession(session), nil
}

// Logout invalidates the session held by this client
func (c *Client) Logout(ctx context.Context) error {
	token := c.token()
	if token == "" {
		return nil
	}

	_, err := c.publicAPI.FrontendAPI.PerformNativeLogout(ctx).
		PerformNativeLogoutBody(*kratosclient.NewPerformNativeLogoutBody(token)).
		Execute()

	// The token is forgotten either way; the backend side is best effort.
	c.forget()

	if err != nil {
		return fmt.Errorf("failed to perform logout: %w", err)
	}
	return nil
}

// RecoverByEmail starts an email recovery flow
func (c *Client) RecoverByEmail(ctx context.Context, email, returnTo string) error {
	req := c.publicAPI.FrontendAPI.CreateNativeRecoveryFlow(ctx)
	flow, _, err := req.Execute()
	if err != nil {
		return fmt.Errorf("failed to create recovery flow: %w", err)
	}

	body := kratosclient.UpdateRecoveryFlowWithCodeMethodAsUpdateRecoveryFlowBody(
		&kratosclient.UpdateRecoveryFlowWithCodeMethod{
			Method: "code",
			Email:  &email,
		})

	update := c.publicAPI.FrontendAPI.UpdateRecoveryFlow(ctx).
		Flow(flow.Id).
		UpdateRecoveryFlowBody(body)
	if _, _, err := update.Execute(); err != nil {
		return fmt.Errorf("failed to submit recovery flow: %w", err)
	}

	_ = returnTo // recovery return address is configured server-side in Kratos
	return nil
}

// HealthCheck checks if Kratos is reachable
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, resp, err := c.publicAPI.MetadataAPI.GetVersion(ctx).Execute()
	if err != nil {
		return fmt.Errorf("failed to connect to Kratos public API: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Kratos public API returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionToken
}

func (c *Client) forget() {
	c.mu.Lock()
	c.sessionToken = ""
	c.sessionID = ""
	c.mu.Unlock()
}

// toDomainSession maps a Kratos session onto the transient domain reference
func toDomainSession(session *kratosclient.Session) *domain.Session {
	expiresAt := time.Now().Add(defaultSessionLifetime)
	if session.ExpiresAt != nil {
		expiresAt = *session.ExpiresAt
	}

	subjectID := ""
	if session.Identity != nil {
		subjectID = session.Identity.Id
	}

	return &domain.Session{
		SubjectID: subjectID,
		ExpiresAt: expiresAt.Unix(),
	}
}

func isValidURL(raw string) bool {
	if raw == "" {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return parsed.Scheme != "" && parsed.Host != ""
}

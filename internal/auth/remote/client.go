// Package remote talks to the storefront's Authentication service over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"milsabores/internal/auth/models"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/platform/circuit"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client implements the Authenticator port against POST /auth/login and
// POST /auth/register. Failures are classified into coded errors: rejected
// credentials, duplicate accounts, timeouts and outages.
//
// A circuit breaker opens after consecutive transient failures; while open,
// calls fail fast except for one probe per cooldown.
type Client struct {
	baseURL  string
	http     *http.Client
	breaker  *circuit.Breaker
	cooldown time.Duration
	logger   *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastProbe time.Time
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithBreaker(b *circuit.Breaker, cooldown time.Duration) Option {
	return func(cl *Client) {
		cl.breaker = b
		cl.cooldown = cooldown
	}
}

func WithClock(now func() time.Time) Option {
	return func(cl *Client) {
		cl.now = now
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		breaker:  circuit.New("auth-service", circuit.WithSuccessThreshold(1)),
		cooldown: 5 * time.Second,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Password  string       `json:"password"`
	BirthDate *models.Date `json:"birthDate,omitempty"`
}

type authResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	BirthDate string `json:"birthDate"`
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	return c.call(ctx, "login", loginRequest{Email: strings.TrimSpace(creds.Email), Password: creds.Password})
}

func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return c.call(ctx, "register", registerRequest{
		Name:      reg.Name,
		Email:     reg.Email,
		Password:  reg.Password,
		BirthDate: reg.BirthDate,
	})
}

func (c *Client) call(ctx context.Context, op string, payload any) (*models.AuthResult, error) {
	if !c.allow() {
		return nil, dErrors.New(dErrors.CodeUnavailable, "authentication service unavailable")
	}

	status, body, err := c.post(ctx, "/auth/"+op, payload)
	if err != nil {
		classified := classifyTransportError(ctx, err)
		if dErrors.IsRetryable(classified) {
			c.recordFailure(ctx)
		}
		return nil, classified
	}

	result, err := parseAuthResponse(op, status, body)
	if dErrors.IsRetryable(err) {
		c.recordFailure(ctx)
	} else {
		c.recordSuccess(ctx)
	}
	return result, err
}

func (c *Client) post(ctx context.Context, path string, payload any) (int, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// allow lets calls through while closed, and one probe per cooldown while open.
func (c *Client) allow() bool {
	if !c.breaker.IsOpen() {
		return true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if now.Sub(c.lastProbe) < c.cooldown {
		return false
	}
	c.lastProbe = now
	return true
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.mu.Lock()
		c.lastProbe = c.now()
		c.mu.Unlock()
		c.logger.WarnContext(ctx, "circuit breaker opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit breaker closed", "breaker", c.breaker.Name())
	}
}

func classifyTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "authentication service timed out")
		}
		return dErrors.Wrap(ctx.Err(), dErrors.CodeCanceled, "authentication request abandoned")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "authentication service timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "authentication service unreachable")
}

// parseAuthResponse maps a response to a result or a coded error.
func parseAuthResponse(op string, status int, body []byte) (*models.AuthResult, error) {
	switch {
	case status == http.StatusOK || status == http.StatusCreated:
	case status == http.StatusConflict:
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	case status == http.StatusBadRequest && op == "register":
		return nil, dErrors.New(dErrors.CodeValidation, "registration rejected")
	case status == http.StatusBadRequest, status == http.StatusUnauthorized, status == http.StatusForbidden, status == http.StatusNotFound && op == "login":
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return nil, dErrors.New(dErrors.CodeTimeout, "authentication service timed out")
	case status == http.StatusTooManyRequests, status >= 500:
		return nil, dErrors.New(dErrors.CodeUnavailable, fmt.Sprintf("authentication service returned %d", status))
	default:
		return nil, dErrors.New(dErrors.CodeInternal, fmt.Sprintf("unexpected authentication response %d", status))
	}

	var resp authResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "malformed authentication response")
	}
	identity, err := resp.User.toIdentity()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "malformed identity in authentication response")
	}
	if resp.AccessToken == "" {
		return nil, dErrors.New(dErrors.CodeInternal, "authentication response carries no token")
	}
	return &models.AuthResult{Identity: identity, Token: resp.AccessToken}, nil
}

func (u userResponse) toIdentity() (models.Identity, error) {
	userID, err := parseUserID(u.ID)
	if err != nil {
		return models.Identity{}, err
	}
	role := models.RoleCustomer
	if strings.TrimSpace(u.Role) != "" {
		if role, err = models.ParseRole(u.Role); err != nil {
			return models.Identity{}, err
		}
	}
	identity := models.Identity{ID: userID, Name: strings.TrimSpace(u.Name), Email: strings.TrimSpace(u.Email), Role: role}
	if u.BirthDate != "" {
		d, err := models.ParseDate(u.BirthDate)
		if err != nil {
			return models.Identity{}, err
		}
		identity.BirthDate = &d
	}
	return identity, identity.Validate()
}

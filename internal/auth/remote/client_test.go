package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"milsabores/internal/auth/models"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/platform/circuit"
)

type ClientSuite struct {
	suite.Suite
	server  *httptest.Server
	handler http.HandlerFunc
	hits    atomic.Int32
	client  *Client
	userID  id.UserID
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.hits.Store(0)
	s.userID = id.NewUserID()
	s.handler = s.okHandler
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		s.handler(w, r)
	}))
	s.client = New(s.server.URL + "/api/v1/")
}

func (s *ClientSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientSuite) okHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"accessToken": "tok-123",
		"user": map[string]any{
			"id":        s.userID.String(),
			"name":      "Usuario Mayor",
			"email":     body["email"],
			"role":      "cliente",
			"birthDate": "1950-01-01",
		},
	})
}

func (s *ClientSuite) status(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(code)
	}
}

func (s *ClientSuite) TestLoginSuccess() {
	var gotPath, gotContentType string
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		s.okHandler(w, r)
	}

	res, err := s.client.Login(context.Background(), models.Credentials{Email: " mayor@gmail.com ", Password: "password123"})
	s.Require().NoError(err)

	s.Equal("/api/v1/auth/login", gotPath)
	s.Equal("application/json", gotContentType)
	s.Equal("tok-123", res.Token)
	s.Equal(s.userID, res.Identity.ID)
	s.Equal("mayor@gmail.com", res.Identity.Email)
	s.Equal(models.RoleCustomer, res.Identity.Role)
	s.Require().NotNil(res.Identity.BirthDate)
	s.Equal(1950, res.Identity.BirthDate.Year)
}

func (s *ClientSuite) TestRegisterPostsToRegister() {
	var gotPath string
	var gotBody registerRequest
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "tok", "user": map[string]any{"id": "42", "email": gotBody.Email, "name": gotBody.Name},
		})
	}

	res, err := s.client.Register(context.Background(), models.Registration{Email: "Ana.Rojas@duoc.cl", Password: "x"})
	s.Require().NoError(err)
	s.Equal("/api/v1/auth/register", gotPath)
	s.Equal("Ana Rojas", gotBody.Name)
	s.Equal("ana.rojas@duoc.cl", gotBody.Email)
	s.False(res.Identity.ID.IsNil(), "numeric ids map to stable UUIDs")

	again, err := parseUserID("42")
	s.Require().NoError(err)
	s.Equal(again, res.Identity.ID)
}

func (s *ClientSuite) TestStatusMapping() {
	tests := []struct {
		name   string
		status int
		code   dErrors.Code
	}{
		{"bad credentials", http.StatusUnauthorized, dErrors.CodeUnauthorized},
		{"bad request on login", http.StatusBadRequest, dErrors.CodeUnauthorized},
		{"gateway timeout", http.StatusGatewayTimeout, dErrors.CodeTimeout},
		{"server error", http.StatusInternalServerError, dErrors.CodeUnavailable},
		{"rate limited", http.StatusTooManyRequests, dErrors.CodeUnavailable},
		{"unexpected", http.StatusTeapot, dErrors.CodeInternal},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.client.breaker.Reset()
			s.handler = s.status(tt.status)
			_, err := s.client.Login(context.Background(), models.Credentials{Email: "a@b.cl", Password: "x"})
			s.True(dErrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func (s *ClientSuite) TestDuplicateRegistrationConflicts() {
	s.handler = s.status(http.StatusConflict)
	_, err := s.client.Register(context.Background(), models.Registration{Email: "a@b.cl", Password: "x"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ClientSuite) TestMalformedResponses() {
	s.Run("invalid json", func() {
		s.handler = func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte(`{nope`)) }
		_, err := s.client.Login(context.Background(), models.Credentials{Email: "a@b.cl", Password: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("missing token", func() {
		s.handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"user":{"id":"1","email":"a@b.cl"}}`))
		}
		_, err := s.client.Login(context.Background(), models.Credentials{Email: "a@b.cl", Password: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("invalid email in identity", func() {
		s.handler = func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"accessToken":"t","user":{"id":"1","email":""}}`))
		}
		_, err := s.client.Login(context.Background(), models.Credentials{Email: "a@b.cl", Password: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ClientSuite) TestTimeoutIsRetryable() {
	release := make(chan struct{})
	defer close(release)
	s.handler = func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := s.client.Login(ctx, models.Credentials{Email: "a@b.cl", Password: "x"})

	s.True(dErrors.HasCode(err, dErrors.CodeTimeout), "got %v", err)
	s.True(dErrors.IsRetryable(err))
}

func (s *ClientSuite) TestCancelledIsNotRetryable() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.client.Login(ctx, models.Credentials{Email: "a@b.cl", Password: "x"})

	s.True(dErrors.HasCode(err, dErrors.CodeCanceled), "got %v", err)
	s.False(dErrors.IsRetryable(err))
}

func (s *ClientSuite) TestBreakerFailsFastWhileOpen() {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.client = New(s.server.URL,
		WithBreaker(circuit.New("auth", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(1)), time.Minute),
		WithClock(func() time.Time { return now }),
	)
	s.handler = s.status(http.StatusServiceUnavailable)
	creds := models.Credentials{Email: "a@b.cl", Password: "x"}

	for range 2 {
		_, err := s.client.Login(context.Background(), creds)
		s.True(dErrors.IsRetryable(err))
	}
	s.Require().Equal(int32(2), s.hits.Load())

	_, err := s.client.Login(context.Background(), creds)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal(int32(2), s.hits.Load(), "open breaker does not touch the network")

	now = now.Add(time.Minute)
	s.handler = s.okHandler
	_, err = s.client.Login(context.Background(), creds)
	s.Require().NoError(err, "probe after cooldown goes through")
	s.False(s.client.breaker.IsOpen())
}

func TestParseUserID(t *testing.T) {
	u := id.NewUserID()
	got, err := parseUserID(u.String())
	require.NoError(t, err)
	assert.Equal(t, u, got)

	_, err = parseUserID(" ")
	assert.Error(t, err)
}

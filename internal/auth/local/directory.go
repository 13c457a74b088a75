// Package local is the in-process Authentication collaborator: a small user
// directory kept in the shared backend under the users key, with bcrypt
// password hashes and locally signed tokens. It backs demos and tests with
// the same contract as the remote service.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"milsabores/internal/auth/models"
	"milsabores/internal/auth/token"
	"milsabores/internal/persist"
	id "milsabores/pkg/domain"
	dErrors "milsabores/pkg/domain-errors"
	"milsabores/pkg/email"
	"milsabores/pkg/platform/sentinel"
)

// userRecord is the persisted shape of one directory entry.
type userRecord struct {
	ID           id.UserID    `json:"id"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Role         models.Role  `json:"role"`
	BirthDate    *models.Date `json:"birthDate,omitempty"`
	PasswordHash string       `json:"passwordHash"`
}

func (u userRecord) identity() models.Identity {
	return models.Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role, BirthDate: u.BirthDate}.Clone()
}

// Directory authenticates against the users record.
type Directory struct {
	backend  persist.Backend
	tokens   *token.Service
	hashCost int
	logger   *slog.Logger

	mu sync.Mutex
}

type Option func(*Directory)

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(d *Directory) {
		d.hashCost = cost
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
	}
}

func NewDirectory(backend persist.Backend, tokens *token.Service, opts ...Option) *Directory {
	d := &Directory{backend: backend, tokens: tokens, hashCost: bcrypt.DefaultCost, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

func (d *Directory) Login(ctx context.Context, creds models.Credentials) (*models.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}

	want := email.Normalize(creds.Email)
	for _, u := range users {
		if email.Normalize(u.Email) != want {
			continue
		}
		ok, err := verifyPassword(creds.Password, u.PasswordHash)
		if err != nil {
			d.logger.ErrorContext(ctx, "stored password hash is unusable", "user_id", u.ID.String(), "error", err)
			return nil, errInvalidCredentials
		}
		if !ok {
			return nil, errInvalidCredentials
		}
		return d.result(u.identity())
	}
	return nil, errInvalidCredentials
}

func (d *Directory) Register(ctx context.Context, reg models.Registration) (*models.AuthResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	users, err := d.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if email.Normalize(u.Email) == reg.Email {
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
	}

	hash, err := hashPassword(reg.Password, d.hashCost)
	if err != nil {
		return nil, err
	}
	record := userRecord{
		ID:           id.NewUserID(),
		Name:         reg.Name,
		Email:        reg.Email,
		Role:         models.RoleCustomer,
		BirthDate:    reg.BirthDate,
		PasswordHash: hash,
	}
	if err := d.save(ctx, append(users, record)); err != nil {
		return nil, err
	}
	d.logger.InfoContext(ctx, "user registered", "user_id", record.ID.String())
	return d.result(record.identity())
}

func (d *Directory) result(identity models.Identity) (*models.AuthResult, error) {
	signed, err := d.tokens.Issue(identity)
	if err != nil {
		return nil, err
	}
	return &models.AuthResult{Identity: identity, Token: signed}, nil
}

func (d *Directory) load(ctx context.Context) ([]userRecord, error) {
	users, err := loadUsers(ctx, d.backend)
	if isCorrupt(err) {
		d.logger.WarnContext(ctx, "user directory is unreadable, treating as empty", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "user directory unavailable")
	}
	return users, nil
}

func (d *Directory) save(ctx context.Context, users []userRecord) error {
	if err := saveUsers(ctx, d.backend, users); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "user directory unavailable")
	}
	return nil
}

// loadUsers returns an empty directory for a missing record and ErrCorrupt
// for one that does not decode.
func loadUsers(ctx context.Context, backend persist.Backend) ([]userRecord, error) {
	raw, err := backend.Get(ctx, persist.KeyUsers)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var users []userRecord
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w: %v", sentinel.ErrCorrupt, err)
	}
	return users, nil
}

func isCorrupt(err error) bool {
	return errors.Is(err, sentinel.ErrCorrupt)
}

func saveUsers(ctx context.Context, backend persist.Backend, users []userRecord) error {
	if users == nil {
		users = []userRecord{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return backend.Set(ctx, persist.KeyUsers, data)
}

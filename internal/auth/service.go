// Package auth contains the core account logic: signup, credential
// validation and token issuance. Persistence and hashing sit behind small
// interfaces so the service can be exercised without a database.
package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/vanguardhq/defense-api/internal/model"
	"github.com/vanguardhq/defense-api/internal/queue"
	"github.com/vanguardhq/defense-api/internal/utils"
)

// AccountStore is the persistence surface the service needs. Create must
// return repository.ErrEmailExists (or an error wrapping it) on a
// duplicate email; that sentinel is the only store failure translated
// into a client-visible status.
type AccountStore interface {
	Create(ctx context.Context, email, passwordHash, unitName, role string) (model.Account, error)
	GetByEmail(ctx context.Context, email string) (model.Account, error)
}

// Hasher produces and verifies password hashes.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(encoded, plain string) bool
}

// EventPublisher receives audit events for successful signups and logins.
// Publishing is best effort; failures must not fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.AuthEvent) error
}

// TokenPair is the response body of a successful login.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Service implements the auth operations over an AccountStore and Hasher.
type Service struct {
	store      AccountStore
	hasher     Hasher
	events     EventPublisher // may be nil when no broker is configured
	secret     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewService(store AccountStore, hasher Hasher, events EventPublisher, secret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		store:      store,
		hasher:     hasher,
		events:     events,
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// Signup hashes the password and inserts a new VIEWER account. The hash
// always runs before the insert; uniqueness is enforced by the store at
// insert time, not by a lookup, so there is no check-then-act window.
// Store errors, including repository.ErrEmailExists on a duplicate email,
// propagate unchanged. The returned account has the hash stripped.
func (s *Service) Signup(ctx context.Context, email, password, unitName string) (model.Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.Account{}, err
	}
	acc, err := s.store.Create(ctx, email, hash, unitName, model.RoleViewer)
	if err != nil {
		return model.Account{}, err
	}
	s.emit(ctx, queue.EventSignup, acc)
	acc.PasswordHash = ""
	return acc, nil
}

// ValidateCredentials looks up the account and verifies the password.
// Unknown email and wrong password both return ok=false with a nil error,
// so the two cases are indistinguishable to the caller. The returned
// account has the hash stripped.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (model.Account, bool, error) {
	acc, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Account{}, false, nil
		}
		return model.Account{}, false, err
	}
	if !s.hasher.Verify(acc.PasswordHash, password) {
		return model.Account{}, false, nil
	}
	acc.PasswordHash = ""
	return acc, true, nil
}

// Login issues an access/refresh token pair for an already-validated
// account and records the login event.
func (s *Service) Login(ctx context.Context, acc model.Account) (TokenPair, error) {
	access, err := utils.NewAccessToken(s.secret, acc, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := utils.NewRefreshToken(s.secret, acc, s.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	log.Printf("auth: login user_id=%d email=%s", acc.ID, acc.Email)
	s.emit(ctx, queue.EventLogin, acc)
	return TokenPair{AccessToken: access.Token, RefreshToken: refresh.Token}, nil
}

func (s *Service) emit(ctx context.Context, typ string, acc model.Account) {
	if s.events == nil {
		return
	}
	ev := queue.AuthEvent{
		Type:   typ,
		UserID: acc.ID,
		Email:  acc.Email,
		At:     time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		log.Printf("auth: publish %s event failed: %v", typ, err)
	}
}

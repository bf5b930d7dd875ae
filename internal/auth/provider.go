// Package auth is the local account provider: a mock sign-in with bcrypt
// hashed accounts and a single persisted session.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hackgods/medication-reminder/internal/logger"
)

const (
	KeyUser     = "user"
	KeyAccounts = "accounts"
)

var (
	ErrBusy               = errors.New("another sign-in is in progress")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// KV is the subset of the durable store the provider needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type account struct {
	User
	PasswordHash string `json:"passwordHash"`
}

type Provider struct {
	kv      KV
	latency time.Duration
	cost    int

	busy atomic.Bool
}

func NewProvider(kv KV, latency time.Duration) *Provider {
	return &Provider{kv: kv, latency: latency, cost: bcrypt.DefaultCost}
}

// Login signs in with email and password. A registered email must match its
// password; an unknown email is accepted and named after its local part.
func (p *Provider) Login(ctx context.Context, email, password string) (User, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return User{}, ErrBusy
	}
	defer p.busy.Store(false)

	if err := p.wait(ctx); err != nil {
		return User{}, err
	}

	email = normalizeEmail(email)
	accounts, err := p.accounts(ctx)
	if err != nil {
		return User{}, err
	}

	u := User{ID: userID(email), Email: email, Name: localPart(email)}
	if acc, ok := accounts[email]; ok {
		if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
			return User{}, ErrInvalidCredentials
		}
		u = acc.User
	}

	if err := p.setSession(ctx, u); err != nil {
		return User{}, err
	}

	logger.Logger.Info().Str("user_id", u.ID).Msg("user logged in")
	return u, nil
}

// Signup registers a new account and signs it in. Only one Login or Signup
// runs at a time; a concurrent call fails with ErrBusy.
func (p *Provider) Signup(ctx context.Context, name, email, password string) (User, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return User{}, ErrBusy
	}
	defer p.busy.Store(false)

	if err := p.wait(ctx); err != nil {
		return User{}, err
	}

	email = normalizeEmail(email)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	accounts, err := p.accounts(ctx)
	if err != nil {
		return User{}, err
	}
	if _, ok := accounts[email]; ok {
		return User{}, ErrEmailTaken
	}

	u := User{ID: userID(email), Email: email, Name: strings.TrimSpace(name)}
	if u.Name == "" {
		u.Name = localPart(email)
	}
	accounts[email] = account{User: u, PasswordHash: string(hash)}

	data, err := json.Marshal(accounts)
	if err != nil {
		return User{}, fmt.Errorf("encode accounts: %w", err)
	}
	if err := p.kv.Set(ctx, KeyAccounts, string(data)); err != nil {
		return User{}, fmt.Errorf("write accounts: %w", err)
	}

	if err := p.setSession(ctx, u); err != nil {
		return User{}, err
	}

	logger.Logger.Info().Str("user_id", u.ID).Msg("user signed up")
	return u, nil
}

func (p *Provider) Logout(ctx context.Context) error {
	if err := p.kv.Delete(ctx, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the signed in user, if any. An unreadable session counts as signed out.
func (p *Provider) Current(ctx context.Context) (User, bool, error) {
	raw, ok, err := p.kv.Get(ctx, KeyUser)
	if err != nil {
		return User{}, false, fmt.Errorf("read session: %w", err)
	}
	if !ok {
		return User{}, false, nil
	}

	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil || u.ID == "" {
		logger.Logger.Warn().Err(err).Msg("discarding unreadable session")
		return User{}, false, nil
	}
	return u, true, nil
}

func (p *Provider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return nil
	}

	t := time.NewTimer(p.latency)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (p *Provider) accounts(ctx context.Context) (map[string]account, error) {
	raw, ok, err := p.kv.Get(ctx, KeyAccounts)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}

	accounts := map[string]account{}
	if !ok {
		return accounts, nil
	}
	if err := json.Unmarshal([]byte(raw), &accounts); err != nil {
		logger.Logger.Warn().Err(err).Msg("discarding unreadable accounts")
		return map[string]account{}, nil
	}
	return accounts, nil
}

func (p *Provider) setSession(ctx context.Context, u User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := p.kv.Set(ctx, KeyUser, string(data)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func localPart(email string) string {
	name, _, _ := strings.Cut(email, "@")
	return name
}

// userID is stable per email so a repeated mock login keeps the same identity.
func userID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}

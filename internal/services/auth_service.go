package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"bazaar/internal/domain"
	"bazaar/internal/repos"
	"bazaar/internal/validate"
)

type AuthService struct {
	Accounts   *repos.AccountRepo
	Sessions   *repos.SessionRepo
	State      *SessionState
	AdminEmail string
}

func NewAuthService(db *sqlx.DB, state *SessionState, adminEmail string) *AuthService {
	return &AuthService{
		Accounts:   repos.NewAccountRepo(db),
		Sessions:   repos.NewSessionRepo(db),
		State:      state,
		AdminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
	}
}

type Registration struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
}

// Register creates a buyer with an empty wallet and signs them in on sid.
func (s *AuthService) Register(ctx context.Context, sid string, in Registration) (domain.Account, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.Email) == "" ||
		in.Password == "" || strings.TrimSpace(in.Phone) == "" {
		return domain.Account{}, ErrMissingFields
	}
	first, ok1 := validate.Name(in.FirstName)
	email, ok2 := validate.Email(in.Email)
	phone, ok3 := validate.Phone(in.Phone)
	last := strings.TrimSpace(in.LastName)
	if !ok1 || !ok2 || !ok3 || !validate.Password(in.Password) {
		return domain.Account{}, ErrInvalidInput
	}
	if last != "" {
		if _, ok := validate.Name(last); !ok {
			return domain.Account{}, ErrInvalidInput
		}
	}
	if email == s.AdminEmail {
		return domain.Account{}, ErrReservedEmail
	}
	if _, err := s.Accounts.ByEmail(ctx, email); err == nil {
		return domain.Account{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return domain.Account{}, err
	}

	h, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Account{}, err
	}
	acc := domain.Account{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		Phone:     phone,
		Hash:      string(h),
		Balance:   decimal.Zero,
	}
	if err := s.Accounts.Insert(ctx, acc); err != nil {
		if repos.KindOf(err) == repos.KindConflict {
			return domain.Account{}, ErrEmailTaken
		}
		return domain.Account{}, err
	}
	if err := s.Sessions.Bind(ctx, sid, acc.ID); err != nil {
		return domain.Account{}, err
	}
	return s.Accounts.ByID(ctx, acc.ID)
}

// Login never says which of email or password was wrong.
func (s *AuthService) Login(ctx context.Context, sid, email, password string) (domain.Account, error) {
	email, ok := validate.Email(email)
	if !ok || password == "" {
		return domain.Account{}, ErrBadCreds
	}
	u, err := s.Accounts.ByEmail(ctx, email)
	if err != nil {
		return domain.Account{}, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return domain.Account{}, ErrBadCreds
	}
	if err := s.Sessions.Bind(ctx, sid, u.ID); err != nil {
		return domain.Account{}, err
	}
	return u, nil
}

// Logout unbinds the account and drops the cart and favorites.
func (s *AuthService) Logout(ctx context.Context, sid string) error {
	s.State.Forget(sid)
	return s.Sessions.Unbind(ctx, sid)
}

func (s *AuthService) CurrentUser(ctx context.Context, sid string) (domain.Account, error) {
	if sid == "" {
		return domain.Account{}, ErrNotAuthenticated
	}
	u, err := s.Sessions.Account(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Account{}, ErrNotAuthenticated
		}
		return domain.Account{}, err
	}
	return u, nil
}

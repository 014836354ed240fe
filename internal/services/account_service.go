package services

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"bazaar/internal/domain"
	"bazaar/internal/repos"
	"bazaar/internal/validate"
)

type AccountService struct {
	Accounts *repos.AccountRepo
	Sessions *repos.SessionRepo
	Images   *ImageService
}

func NewAccountService(db *sqlx.DB, images *ImageService) *AccountService {
	return &AccountService{
		Accounts: repos.NewAccountRepo(db),
		Sessions: repos.NewSessionRepo(db),
		Images:   images,
	}
}

func (s *AccountService) ChangePassword(ctx context.Context, accountID, current, next string) error {
	acc, err := s.Accounts.ByID(ctx, accountID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.Hash), []byte(current)) != nil {
		return ErrWrongPassword
	}
	if !validate.Password(next) {
		return ErrInvalidInput
	}
	h, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Accounts.UpdatePassword(ctx, accountID, string(h))
}

// SetAvatar stores a data URL (or keeps a plain reference) and returns the
// reference now on the account.
func (s *AccountService) SetAvatar(ctx context.Context, accountID, ref string) (string, error) {
	stored, err := s.Images.Resolve(ctx, "avatars", ref)
	if err != nil {
		return "", err
	}
	if err := s.Accounts.UpdateAvatar(ctx, accountID, stored); err != nil {
		return "", err
	}
	return stored, nil
}

// Recharge credits the wallet and returns the updated account.
func (s *AccountService) Recharge(ctx context.Context, accountID string, amount decimal.Decimal) (domain.Account, error) {
	if !validate.Amount(amount) {
		return domain.Account{}, ErrInvalidAmount
	}
	if err := s.Accounts.Credit(ctx, accountID, amount); err != nil {
		return domain.Account{}, err
	}
	return s.Accounts.ByID(ctx, accountID)
}

func (s *AccountService) Preferences(ctx context.Context, sid string) (domain.Preferences, error) {
	return s.Sessions.Preferences(ctx, sid)
}

func (s *AccountService) ChosenLocale(ctx context.Context, sid string) (domain.Locale, bool, error) {
	return s.Sessions.ChosenLocale(ctx, sid)
}

// SetPreferences applies a partial update; empty fields keep their value.
func (s *AccountService) SetPreferences(ctx context.Context, sid string, locale domain.Locale, theme domain.Theme) (domain.Preferences, error) {
	p, err := s.Sessions.Preferences(ctx, sid)
	if err != nil {
		return p, err
	}
	if locale != "" {
		if !locale.Valid() {
			return p, ErrInvalidInput
		}
		p.Locale = locale
	}
	if theme != "" {
		if !theme.Valid() {
			return p, ErrInvalidInput
		}
		p.Theme = theme
	}
	return p, s.Sessions.SetPreferences(ctx, sid, p)
}

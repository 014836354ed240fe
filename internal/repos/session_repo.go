package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"bazaar/internal/domain"
)

// SessionRepo maps a sid cookie to its signed-in account and the visitor's
// display preferences.
type SessionRepo struct{ db sqlx.ExtContext }

func NewSessionRepo(db sqlx.ExtContext) *SessionRepo { return &SessionRepo{db: db} }

// Touch creates the session row if needed.
func (r *SessionRepo) Touch(ctx context.Context, sid string) error {
	now := stamp()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions(id, created_at, last_seen) VALUES(?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen
	`), sid, now, now)
	return wrap("sessions.touch", err)
}

func (r *SessionRepo) Bind(ctx context.Context, sid, accountID string) error {
	now := stamp()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions(id, account_id, created_at, last_seen) VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET account_id = excluded.account_id, last_seen = excluded.last_seen
	`), sid, accountID, now, now)
	return wrap("sessions.bind", err)
}

func (r *SessionRepo) Unbind(ctx context.Context, sid string) error {
	_, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE sessions SET account_id = NULL, last_seen = ? WHERE id = ?`), stamp(), sid)
	return wrap("sessions.unbind", err)
}

// Account returns the account bound to sid, KindNotFound for anonymous sessions.
func (r *SessionRepo) Account(ctx context.Context, sid string) (domain.Account, error) {
	var a domain.Account
	err := sqlx.GetContext(ctx, r.db, &a, r.db.Rebind(`
		SELECT a.id, a.first_name, a.last_name, a.email, a.phone, a.password_hash, a.is_admin, a.balance, a.avatar, a.created_at
		FROM sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.id = ?
	`), sid)
	return a, wrap("sessions.account", err)
}

// Preferences falls back to the defaults for unknown sessions.
func (r *SessionRepo) Preferences(ctx context.Context, sid string) (domain.Preferences, error) {
	var p domain.Preferences
	err := sqlx.GetContext(ctx, r.db, &p,
		r.db.Rebind(`SELECT locale, theme FROM sessions WHERE id = ?`), sid)
	if err != nil {
		if KindOf(wrap("sessions.preferences", err)) == KindNotFound {
			return domain.DefaultPreferences(), nil
		}
		return domain.DefaultPreferences(), wrap("sessions.preferences", err)
	}
	if p.Locale == "" {
		p.Locale = domain.DefaultLocale
	}
	return p, nil
}

// ChosenLocale reports the locale the visitor saved, if any. Sessions that
// never picked one follow the browser's Accept-Language.
func (r *SessionRepo) ChosenLocale(ctx context.Context, sid string) (domain.Locale, bool, error) {
	var loc string
	err := sqlx.GetContext(ctx, r.db, &loc,
		r.db.Rebind(`SELECT locale FROM sessions WHERE id = ?`), sid)
	if err != nil {
		if err = wrap("sessions.locale", err); KindOf(err) == KindNotFound {
			return "", false, nil
		}
		return "", false, err
	}
	return domain.Locale(loc), loc != "", nil
}

func (r *SessionRepo) SetPreferences(ctx context.Context, sid string, p domain.Preferences) error {
	now := stamp()
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO sessions(id, locale, theme, created_at, last_seen) VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET locale = excluded.locale, theme = excluded.theme, last_seen = excluded.last_seen
	`), sid, p.Locale, p.Theme, now, now)
	return wrap("sessions.set_preferences", err)
}

package auth

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/bookbrief/bookbrief/internal/config"
	"github.com/bookbrief/bookbrief/internal/entities"
)

const (
	adminCookieName   = "bookbrief_admin"
	sessionKeyAdminID = "admin_id"
)

const sessionsSchema = `CREATE TABLE IF NOT EXISTS sessions (
	token TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	expiry REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`

// SessionManager holds cookie sessions for the admin back-office. Readers
// never get one; they use bearer tokens. A session records only the admin's
// ID, the role is re-read from the database on every request.
type SessionManager struct {
	*scs.SessionManager
}

// NewSessionManager stores sessions in the sessions table of sqlDB,
// creating it when missing.
func NewSessionManager(sqlDB *sql.DB, cfg config.Auth) (*SessionManager, error) {
	if _, err := sqlDB.Exec(sessionsSchema); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}

	sm := scs.New()
	sm.Store = sqlite3store.New(sqlDB)
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2
	sm.Cookie = scs.SessionCookie{
		Name:     adminCookieName,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
		Persist:  true,
	}
	return &SessionManager{SessionManager: sm}, nil
}

// Login binds the session in ctx to admin. The token is renewed first so a
// cookie planted before login is useless afterwards.
func (sm *SessionManager) Login(ctx context.Context, admin *entities.User) error {
	if !admin.IsAdmin() {
		return ErrNotAdmin
	}
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, sessionKeyAdminID, int(admin.ID))
	return nil
}

// Logout destroys the session and returns the admin it belonged to, 0 when
// nobody was logged in.
func (sm *SessionManager) Logout(ctx context.Context) (uint, error) {
	adminID := sm.AdminID(ctx)
	return adminID, sm.Destroy(ctx)
}

// AdminID is the admin logged in on ctx's session, or 0.
func (sm *SessionManager) AdminID(ctx context.Context) uint {
	return uint(sm.GetInt(ctx, sessionKeyAdminID))
}

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAdminExists    = errors.New("admin already exists")
	ErrAdminNotFound  = errors.New("admin not found")
	ErrBadCredentials = errors.New("bad credentials")
	ErrTokenInvalid   = errors.New("token is unknown or expired")
)

// Admins holds the operator accounts and their issued refresh tokens.
type Admins struct {
	db  *sql.DB
	now func() time.Time
}

func NewAdmins(db *sql.DB) *Admins {
	return &Admins{db: db, now: time.Now}
}

func (a *Admins) Create(ctx context.Context, username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "admin.hash_password")
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO admin_user (username, password_hash)
		VALUES (?, ?)`,
		username, hash,
	)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return ErrAdminExists
		}
	}
	return errors.Wrap(err, "db.insert_admin")
}

// Delete removes an admin together with every token issued to it.
func (a *Admins) Delete(ctx context.Context, username string) error {
	res, err := a.db.ExecContext(ctx, `
		DELETE FROM admin_user
		WHERE username = ?`,
		username,
	)
	if err != nil {
		return errors.Wrap(err, "db.delete_admin")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "db.delete_admin.verify")
	}
	if n < 1 {
		return ErrAdminNotFound
	}
	return nil
}

func (a *Admins) List(ctx context.Context) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT username
		FROM admin_user
		ORDER BY username`)
	if err != nil {
		return nil, errors.Wrap(err, "db.list_admins")
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err = rows.Scan(&name); err != nil {
			return nil, errors.Wrap(err, "db.list_admins.scan")
		}
		names = append(names, name)
	}
	return names, errors.Wrap(rows.Err(), "db.list_admins.rows")
}

// Verify checks a password. Unknown users and wrong passwords both report
// ErrBadCredentials.
func (a *Admins) Verify(ctx context.Context, username, password string) error {
	var hash []byte
	err := a.db.QueryRowContext(ctx, `
		SELECT password_hash
		FROM admin_user
		WHERE username = ?`,
		username,
	).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBadCredentials
	}
	if err != nil {
		return errors.Wrap(err, "db.get_admin")
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return ErrBadCredentials
	}
	return nil
}

func (a *Admins) StoreToken(ctx context.Context, username, tokenID, refreshTokenID string, ttl time.Duration) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO token (username, token_id, refresh_token_id, expires_at)
		VALUES (?, ?, ?, ?)`,
		username,
		tokenID,
		refreshTokenID,
		a.now().Add(ttl).Unix(),
	)
	return errors.Wrap(err, "db.insert_token")
}

// ConsumeToken redeems a refresh token. A token can be redeemed once, and
// only before it expires.
func (a *Admins) ConsumeToken(ctx context.Context, username, tokenID, refreshTokenID string) error {
	var expiresAt int64
	err := a.db.QueryRowContext(ctx, `
		DELETE FROM token
		WHERE username = ?
			AND token_id = ?
			AND refresh_token_id = ?
		RETURNING expires_at`,
		username,
		tokenID,
		refreshTokenID,
	).Scan(&expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrTokenInvalid
	}
	if err != nil {
		return errors.Wrap(err, "db.delete_token")
	}

	if time.Unix(expiresAt, 0).Before(a.now()) {
		return ErrTokenInvalid
	}
	return nil
}

// RevokeTokens drops every refresh token of username and returns how many
// there were.
func (a *Admins) RevokeTokens(ctx context.Context, username string) (int64, error) {
	res, err := a.db.ExecContext(ctx, `
		DELETE FROM token
		WHERE username = ?`,
		username,
	)
	if err != nil {
		return 0, errors.Wrap(err, "db.delete_tokens")
	}
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "db.delete_tokens.verify")
}

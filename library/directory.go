package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// Directory is the membership store. Circulation never reads it; the CLI uses
// it to register members and verify their credentials.
type Directory struct {
	db  *Database
	now func() time.Time
}

// NewDirectory returns the member directory backed by db.
func NewDirectory(db *Database) *Directory {
	return &Directory{db: db, now: time.Now}
}

// Validate checks the caller-supplied profile fields.
func (m *Member) Validate() error {
	return validation.ValidateStruct(m,
		validation.Field(&m.ID, validation.Required, validation.Length(1, 64)),
		validation.Field(&m.Name, validation.Required),
		validation.Field(&m.Email, is.EmailFormat),
		validation.Field(&m.Phone, validation.Length(0, 32)),
	)
}

// Register stores a new member with a bcrypt hash of secret.
func (d *Directory) Register(ctx context.Context, m Member, secret string) error {
	m.ID = strings.TrimSpace(m.ID)
	if err := m.Validate(); err != nil {
		return fmt.Errorf("invalid member: %w", err)
	}
	hash, err := HashPassword(secret)
	if err != nil {
		return err
	}
	m.DateRegistered = DateOf(d.now())

	_, err = d.db.db.ExecContext(ctx,
		`INSERT INTO members(id,name,email,phone,date_registered,password_hash) VALUES(?,?,?,?,?,?)`,
		m.ID, m.Name, m.Email, m.Phone, m.DateRegistered, hash)
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("register %q: %w", m.ID, ErrDuplicateMember)
	}
	if err != nil {
		return fmt.Errorf("register %q: %w", m.ID, err)
	}
	return nil
}

// Get fetches a single member.
func (d *Directory) Get(ctx context.Context, id string) (*Member, error) {
	var m Member
	err := d.db.db.GetContext(ctx, &m,
		`SELECT id,name,email,phone,date_registered,password_hash FROM members WHERE id=?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %q: %w", id, ErrMemberNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get member %q: %w", id, err)
	}
	return &m, nil
}

// List returns all members in registration order.
func (d *Directory) List(ctx context.Context) ([]Member, error) {
	members := []Member{}
	if err := d.db.db.SelectContext(ctx, &members,
		`SELECT id,name,email,phone,date_registered,password_hash FROM members ORDER BY rowid`); err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// Verify reports whether secret is the member's password. Unknown members
// verify as false.
func (d *Directory) Verify(ctx context.Context, id, secret string) (bool, error) {
	m, err := d.Get(ctx, id)
	if errors.Is(err, ErrMemberNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return CheckPassword(secret, m.PasswordHash), nil
}

// ResetPassword replaces the member's password hash.
func (d *Directory) ResetPassword(ctx context.Context, id, secret string) error {
	hash, err := HashPassword(secret)
	if err != nil {
		return err
	}
	res, err := d.db.db.ExecContext(ctx, `UPDATE members SET password_hash=? WHERE id=?`, hash, id)
	if err != nil {
		return fmt.Errorf("reset password %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("member %q: %w", id, ErrMemberNotFound)
	}
	return nil
}

// HashPassword returns the bcrypt hash stored for a credential.
func HashPassword(secret string) (string, error) {
	if secret == "" {
		return "", errors.New("password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a password with a bcrypt hash.
func CheckPassword(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

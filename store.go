package folio

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	// ErrAlreadySubscribed is returned when an active subscriber signs up again.
	ErrAlreadySubscribed = errors.New("folio: already subscribed")
	// ErrInvalidEmail is returned when a sign-up address is not an email.
	ErrInvalidEmail = errors.New("folio: invalid email")
)

// Subscriber is one newsletter sign-up.
type Subscriber struct {
	ID           string
	Email        string
	Token        string // unsubscribe token
	CreatedAt    time.Time
	Unsubscribed bool
}

// Store wraps a SQLite database holding newsletter subscribers.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the preview server read while a sign-up writes; the busy
	// timeout makes writers wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS subscribers (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    token TEXT NOT NULL UNIQUE,
    created_at TEXT NOT NULL,
    unsubscribed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_subscribers_token ON subscribers(token);
`)
	return err
}

// NormalizeEmail trims and lower-cases an address and checks its format.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.Validate(email, validation.Required, is.EmailFormat); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	return email, nil
}

// Subscribe adds email to the list. A previously unsubscribed address is
// reactivated; an active one returns ErrAlreadySubscribed.
func (s *Store) Subscribe(email string) (Subscriber, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return Subscriber{}, err
	}
	res, err := s.db.Exec(`
INSERT INTO subscribers (id, email, token, created_at, unsubscribed)
VALUES (?, ?, ?, ?, 0)
ON CONFLICT(email) DO UPDATE SET unsubscribed = 0, created_at = excluded.created_at
WHERE subscribers.unsubscribed = 1`,
		uuid.NewString(), email, uuid.NewString(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return Subscriber{}, fmt.Errorf("folio: subscribe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Subscriber{}, err
	}
	if n == 0 {
		return Subscriber{}, ErrAlreadySubscribed
	}
	return s.subscriberByEmail(email)
}

// Unsubscribe deactivates the subscriber owning token. It returns
// ErrNotFound for an unknown token.
func (s *Store) Unsubscribe(token string) error {
	res, err := s.db.Exec(`UPDATE subscribers SET unsubscribed = 1 WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("folio: unsubscribe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSubscribers returns every subscriber, active ones first, oldest first.
func (s *Store) ListSubscribers() ([]Subscriber, error) {
	rows, err := s.db.Query(`SELECT id, email, token, created_at, unsubscribed FROM subscribers ORDER BY unsubscribed, created_at, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountSubscribers returns the number of active subscribers.
func (s *Store) CountSubscribers() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM subscribers WHERE unsubscribed = 0`).Scan(&n)
	return n, err
}

func (s *Store) subscriberByEmail(email string) (Subscriber, error) {
	row := s.db.QueryRow(`SELECT id, email, token, created_at, unsubscribed FROM subscribers WHERE email = ?`, email)
	sub, err := scanSubscriber(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Subscriber{}, ErrNotFound
	}
	return sub, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSubscriber(row scanner) (Subscriber, error) {
	var sub Subscriber
	var created string
	var unsubscribed int
	if err := row.Scan(&sub.ID, &sub.Email, &sub.Token, &created, &unsubscribed); err != nil {
		return Subscriber{}, err
	}
	sub.CreatedAt, _ = time.Parse(time.RFC3339, created)
	sub.Unsubscribed = unsubscribed == 1
	return sub, nil
}

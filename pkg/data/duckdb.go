package data

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/marcboeker/go-duckdb/v2"
)

const schema = `
CREATE TABLE IF NOT EXISTS tokens (
	key   VARCHAR PRIMARY KEY,
	value VARCHAR NOT NULL
);
`

const (
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
	keyTokenType    = "token_type"
)

func InitDuckDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return db, nil
}

// Repository persists the session tokens in DuckDB.
type Repository struct {
	db *sql.DB
	mu sync.Mutex
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Open initializes the database at path and returns a repository over it.
func Open(path string) (*Repository, error) {
	db, err := InitDuckDB(path)
	if err != nil {
		return nil, err
	}
	return NewRepository(db), nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Save(tokens AuthTokens) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	values := map[string]string{
		keyAccessToken:  tokens.AccessToken,
		keyRefreshToken: tokens.RefreshToken,
		keyTokenType:    tokens.TokenType,
	}
	for key, value := range values {
		if value == "" {
			if _, err := tx.Exec(`DELETE FROM tokens WHERE key = ?`, key); err != nil {
				return fmt.Errorf("clear %s: %w", key, err)
			}
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO tokens (key, value) VALUES (?, ?)
			ON CONFLICT (key) DO UPDATE SET value = excluded.value
		`, key, value)
		if err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return tx.Commit()
}

func (r *Repository) Tokens() (AuthTokens, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT key, value FROM tokens`)
	if err != nil {
		return AuthTokens{}, fmt.Errorf("query tokens: %w", err)
	}
	defer rows.Close()

	var tokens AuthTokens
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return AuthTokens{}, err
		}
		switch key {
		case keyAccessToken:
			tokens.AccessToken = value
		case keyRefreshToken:
			tokens.RefreshToken = value
		case keyTokenType:
			tokens.TokenType = value
		}
	}
	return tokens, rows.Err()
}

func (r *Repository) Clear() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM tokens`)
	return err
}

func (r *Repository) HasAccessToken() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var value string
	err := r.db.QueryRow(`SELECT value FROM tokens WHERE key = ?`, keyAccessToken).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false
	}
	return err == nil && value != ""
}

var _ TokenStore = (*Repository)(nil)

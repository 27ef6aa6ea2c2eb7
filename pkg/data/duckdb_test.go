package data

import (
	"path/filepath"
	"testing"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := InitDuckDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to init DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewRepository(db)
}

func TestSaveAndGetTokens(t *testing.T) {
	repo := setupTestDB(t)

	if repo.HasAccessToken() {
		t.Fatal("Expected empty store to have no access token")
	}

	err := repo.Save(AuthTokens{AccessToken: "access-1", RefreshToken: "refresh-1", TokenType: "bearer"})
	if err != nil {
		t.Fatalf("Failed to save tokens: %v", err)
	}

	tokens, err := repo.Tokens()
	if err != nil {
		t.Fatalf("Failed to load tokens: %v", err)
	}
	if tokens.AccessToken != "access-1" {
		t.Errorf("Expected access token access-1, got %s", tokens.AccessToken)
	}
	if tokens.RefreshToken != "refresh-1" {
		t.Errorf("Expected refresh token refresh-1, got %s", tokens.RefreshToken)
	}
	if !repo.HasAccessToken() {
		t.Error("Expected access token to be present")
	}
}

func TestSaveTokensOverwrites(t *testing.T) {
	repo := setupTestDB(t)

	if err := repo.Save(AuthTokens{AccessToken: "old", RefreshToken: "old-refresh"}); err != nil {
		t.Fatalf("Failed to save tokens: %v", err)
	}
	if err := repo.Save(AuthTokens{AccessToken: "new"}); err != nil {
		t.Fatalf("Failed to save tokens: %v", err)
	}

	tokens, err := repo.Tokens()
	if err != nil {
		t.Fatalf("Failed to load tokens: %v", err)
	}
	if tokens.AccessToken != "new" {
		t.Errorf("Expected access token new, got %s", tokens.AccessToken)
	}
	if tokens.RefreshToken != "" {
		t.Errorf("Expected refresh token to be dropped, got %s", tokens.RefreshToken)
	}
}

func TestClearTokens(t *testing.T) {
	repo := setupTestDB(t)

	if err := repo.Save(AuthTokens{AccessToken: "a", RefreshToken: "r"}); err != nil {
		t.Fatalf("Failed to save tokens: %v", err)
	}
	if err := repo.Clear(); err != nil {
		t.Fatalf("Failed to clear tokens: %v", err)
	}
	if repo.HasAccessToken() {
		t.Error("Expected no access token after clear")
	}
}

func TestTokensSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "novels.db")

	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}
	if err := repo.Save(AuthTokens{AccessToken: "persisted"}); err != nil {
		t.Fatalf("Failed to save tokens: %v", err)
	}
	repo.Close()

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen repository: %v", err)
	}
	defer reopened.Close()

	tokens, err := reopened.Tokens()
	if err != nil {
		t.Fatalf("Failed to load tokens: %v", err)
	}
	if tokens.AccessToken != "persisted" {
		t.Errorf("Expected persisted token, got %q", tokens.AccessToken)
	}
}

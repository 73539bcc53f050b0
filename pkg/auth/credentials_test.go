package auth

import (
	"errors"
	"testing"
	"time"
)

func TestManagerStoreAndRetrieve(t *testing.T) {
	manager, _ := NewMockManager()

	account := &Account{
		Username: "testuser",
		Password: "hunter2hunter2",
	}

	if err := manager.Store(account); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if retrieved.Username != account.Username {
		t.Errorf("username = %q, want %q", retrieved.Username, account.Username)
	}
	if retrieved.Password != account.Password {
		t.Errorf("password = %q, want %q", retrieved.Password, account.Password)
	}
	if retrieved.LastModified.IsZero() {
		t.Error("LastModified was not set on store")
	}
}

func TestManagerStoreValidation(t *testing.T) {
	manager, _ := NewMockManager()

	if err := manager.Store(&Account{Password: "secret"}); err == nil {
		t.Error("expected an error for a missing username")
	}
	if err := manager.Store(&Account{Username: "testuser"}); err == nil {
		t.Error("expected an error for a missing password")
	}
}

func TestManagerFallsBackToNextStore(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keyring locked")
	broken.RetrieveError = errors.New("keyring locked")
	working := NewMockStore()

	manager := NewMockManagerWithStores(broken, working)

	account := &Account{Username: "testuser", Password: "secret"}
	if err := manager.Store(account); err != nil {
		t.Fatalf("Store should fall through to the working store: %v", err)
	}
	if !working.Exists("testuser") {
		t.Error("account did not land in the fallback store")
	}

	retrieved, err := manager.Retrieve("testuser")
	if err != nil {
		t.Fatalf("Retrieve should fall through to the working store: %v", err)
	}
	if retrieved.Username != "testuser" {
		t.Errorf("username = %q, want testuser", retrieved.Username)
	}
}

func TestManagerDelete(t *testing.T) {
	manager, store := NewMockManager()

	_ = manager.Store(&Account{Username: "testuser", Password: "secret"})
	if err := manager.Delete("testuser"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Exists("testuser") {
		t.Error("account still present after delete")
	}

	if err := manager.Delete("missing"); err == nil {
		t.Error("expected an error deleting unknown credentials")
	}
}

func TestManagerListPrefersNewest(t *testing.T) {
	older := NewMockStore()
	newer := NewMockStore()
	_ = older.Store(&Account{Username: "testuser", Password: "old", LastModified: time.Now().Add(-time.Hour)})
	_ = newer.Store(&Account{Username: "testuser", Password: "new", LastModified: time.Now()})

	manager := NewMockManagerWithStores(older, newer)

	accounts, err := manager.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("listed %d accounts, want 1", len(accounts))
	}
	if accounts[0].Password != "new" {
		t.Errorf("List returned the stale copy, password = %q", accounts[0].Password)
	}
}

func TestEnvironmentStore(t *testing.T) {
	t.Setenv("INSTAGRAMPA_USERNAME", "envuser")
	t.Setenv("INSTAGRAMPA_PASSWORD", "envpass")

	store := NewEnvironmentStore()

	account, err := store.Retrieve("")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if account.Username != "envuser" || account.Password != "envpass" {
		t.Errorf("got %q/%q, want envuser/envpass", account.Username, account.Password)
	}

	if _, err := store.Retrieve("someoneelse"); err == nil {
		t.Error("expected a miss for a different username")
	}

	if err := store.Store(account); err != ErrStoreUnavailable {
		t.Errorf("Store error = %v, want ErrStoreUnavailable", err)
	}
}

func TestEnvironmentStoreMissing(t *testing.T) {
	t.Setenv("INSTAGRAMPA_USERNAME", "")
	t.Setenv("INSTAGRAMPA_PASSWORD", "")

	store := NewEnvironmentStore()
	if _, err := store.Retrieve(""); err == nil {
		t.Error("expected an error when the environment is empty")
	}
}

func TestSanitizeAccount(t *testing.T) {
	account := &Account{Username: "testuser", Password: "supersecret"}

	masked := SanitizeAccount(account)
	if masked.Password == account.Password {
		t.Error("password was not masked")
	}
	if masked.Username != account.Username {
		t.Errorf("username = %q, want %q", masked.Username, account.Username)
	}

	if SanitizeAccount(nil) != nil {
		t.Error("sanitizing nil should return nil")
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := make([]byte, keySize)
	for i := range key {
		key[i] = byte(i)
	}

	plaintext := []byte(`{"testuser":{"username":"testuser","password":"secret"}}`)
	ciphertext, err := encrypt(plaintext, key)
	if err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}

	decrypted, err := decrypt(ciphertext, key)
	if err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}
	if string(decrypted) != string(plaintext) {
		t.Errorf("round trip mismatch: %q", decrypted)
	}

	if _, err := decrypt([]byte("short"), key); err == nil {
		t.Error("expected an error for truncated ciphertext")
	}
}

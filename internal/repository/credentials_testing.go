package repository

import (
	"fmt"
	"testing"

	"github.com/zalando/go-keyring"
)

// credentials_testing.go provides test helpers for safely testing credential operations
// that interact with the OS keyring (macOS Keychain, Windows Credential Manager, Linux Secret Service).
//
// # Why This File Exists
//
// Testing credential management requires special handling because:
//  1. We need to use the ACTUAL OS keyring (not mocks) to test real keyring behavior
//  2. Tests must not interfere with production credentials stored on the developer's machine
//  3. Tests must clean up after themselves to avoid polluting the keyring
//  4. Tests should skip gracefully in CI environments where keyring may not be available
//
// # How It Works
//
//  1. Each test gets a unique keyring service name (e.g., "stanchion-test-TestMyTest")
//  2. This isolates test credentials from production and from other tests
//  3. Automatic cleanup via t.Cleanup() removes test credentials when test completes
//  4. Tests can safely run in parallel without conflicts

// TestCredentialManager wraps CredentialManager with test-specific functionality
// that allows for safe cleanup and isolation between tests.
//
// It uses a unique service name per test to prevent conflicts with:
//   - Production credentials on the developer's machine
//   - Other tests running in parallel
//
// Cleanup is automatic via t.Cleanup() registration.
type TestCredentialManager struct {
	*CredentialManager
	testService string
	t           *testing.T
}

// NewTestCredentialManager creates a new credential manager for testing.
//
// This is the primary entry point for testing credential operations. It:
//   - Creates an isolated credential manager with a unique service name
//   - Registers automatic cleanup to remove test credentials
//   - Returns a TestCredentialManager that embeds the real CredentialManager
//
// Usage:
//
//	testCM := repository.NewTestCredentialManager(t)
//	// Access the actual credential manager via embedded field
//	err := testCM.StoreGitHubToken("ghp_test_token")
//	// Or pass it to code under test
//	model.credManager = testCM.CredentialManager
//
// The cleanup happens automatically when the test completes (pass or fail).
func NewTestCredentialManager(t *testing.T) *TestCredentialManager {
	t.Helper()

	// Use a unique service name for testing to avoid conflicts
	testService := fmt.Sprintf("stanchion-test-%s", t.Name())

	cm := &TestCredentialManager{
		CredentialManager: &CredentialManager{
			service: testService,
		},
		testService: testService,
		t:           t,
	}

	// Register cleanup to remove all test credentials
	t.Cleanup(func() {
		cm.Cleanup()
	})

	return cm
}

// Cleanup removes all test credentials from the keyring.
// This is automatically called via t.Cleanup() but can also be called manually.
func (tcm *TestCredentialManager) Cleanup() {
	tcm.t.Helper()

	// Delete both managed keys; ignore errors as the keys might not exist
	_ = keyring.Delete(tcm.testService, githubTokenKey)
	_ = keyring.Delete(tcm.testService, azureAPIKeyName)
}

// SetupTestKeyring ensures the keyring is available for testing.
//
// Returns a cleanup function that should be called when done.
// If the keyring is not available (e.g., in CI environments), it skips the test.
//
// Usage:
//
//	func TestKeyringOperations(t *testing.T) {
//	    cleanup := repository.SetupTestKeyring(t) // Skips if keyring unavailable
//	    defer cleanup()
//	    // ... rest of test
//	}
//
// Note: Most tests don't need this - they can just use NewTestCredentialManager
// which handles keyring errors gracefully.
func SetupTestKeyring(t *testing.T) func() {
	t.Helper()

	// Test if keyring is available
	testService := fmt.Sprintf("stanchion-keyring-test-%s", t.Name())
	testKey := "test_availability"
	testValue := "test_value"

	err := keyring.Set(testService, testKey, testValue)
	if err != nil {
		t.Skipf("Keyring not available, skipping test: %v", err)
	}

	// Clean up the test key
	cleanup := func() {
		_ = keyring.Delete(testService, testKey)
	}

	return cleanup
}

// CreateTestToken generates a valid-format test token for testing purposes.
//
// The token matches GitHub's format requirements but is not a real token.
// It will pass format validation but fail when used with actual GitHub operations.
//
// Parameters:
//   - prefix: Token prefix to use (e.g., "ghp_", "github_pat_"). Empty string uses "ghp_"
//
// Returns: A properly formatted test token string
func CreateTestToken(prefix string) string {
	if prefix == "" {
		prefix = "ghp_"
	}
	// Generate a token that matches GitHub's format requirements (40+ chars)
	return prefix + "1234567890abcdefghijklmnopqrstuvwxyzABCD"
}

// CreateInvalidFormatToken generates an invalid-format token for testing validation.
//
// Returns: "invalid_token_format" (too short, wrong prefix)
func CreateInvalidFormatToken() string {
	return "invalid_token_format"
}

// AssertTokenStored verifies that a token is stored in the credential manager.
//
// Usage:
//
//	testCM := repository.NewTestCredentialManager(t)
//	testCM.StoreGitHubToken("ghp_test")
//	repository.AssertTokenStored(t, testCM, "ghp_test")
func AssertTokenStored(t *testing.T, cm *TestCredentialManager, expectedToken string) {
	t.Helper()

	token, err := cm.GetGitHubToken()
	if err != nil {
		t.Fatalf("Expected token to be stored, but got error: %v", err)
	}

	if token != expectedToken {
		t.Errorf("Expected token %q, got %q", expectedToken, token)
	}
}

// AssertTokenNotStored verifies that no token is stored in the credential manager.
//
// Usage:
//
//	testCM := repository.NewTestCredentialManager(t)
//	repository.AssertTokenNotStored(t, testCM) // Initially empty
//	testCM.StoreGitHubToken("ghp_test")
//	testCM.DeleteGitHubToken()
//	repository.AssertTokenNotStored(t, testCM) // After deletion
func AssertTokenNotStored(t *testing.T, cm *TestCredentialManager) {
	t.Helper()

	hasToken := cm.HasGitHubToken()
	if hasToken {
		t.Error("Expected no token to be stored, but HasGitHubToken returned true")
	}

	_, err := cm.GetGitHubToken()
	if err == nil {
		t.Error("Expected error when getting non-existent token, but got nil")
	}
}

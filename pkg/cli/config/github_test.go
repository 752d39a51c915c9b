package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/drover-dev/drover/pkg/cli/config"
)

func TestGitHub_Client(t *testing.T) {
	t.Run("no credentials yields no client", func(t *testing.T) {
		cfg := &config.GitHub{}

		client, err := cfg.Client()
		if err != nil {
			t.Fatalf("Client() unexpected error = %v", err)
		}
		if client != nil {
			t.Error("Client() should return nil without credentials")
		}
	})

	t.Run("token credentials", func(t *testing.T) {
		cfg := &config.GitHub{Token: "ghp_dummy"}

		client, err := cfg.Client()
		if err != nil {
			t.Fatalf("Client() unexpected error = %v", err)
		}
		if client == nil {
			t.Fatal("Client() returned nil for token credentials")
		}
		if client.TokenSource() == nil {
			t.Error("token client should carry a token source")
		}
	})

	t.Run("incomplete app credentials", func(t *testing.T) {
		cfg := &config.GitHub{AppID: 12345}

		if _, err := cfg.Client(); err == nil {
			t.Error("Client() should reject an app ID without installation ID and key")
		}
	})

	t.Run("missing private key file", func(t *testing.T) {
		cfg := &config.GitHub{
			AppID:          12345,
			InstallationID: 67890,
			PrivateKeyFile: filepath.Join(t.TempDir(), "missing.pem"),
		}

		if _, err := cfg.Client(); err == nil {
			t.Error("Client() should fail when the key file does not exist")
		}
	})

	t.Run("invalid private key", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "key.pem")
		if err := os.WriteFile(keyFile, []byte("not a PEM"), 0600); err != nil {
			t.Fatal(err)
		}

		cfg := &config.GitHub{
			AppID:          12345,
			InstallationID: 67890,
			PrivateKeyFile: keyFile,
		}

		if _, err := cfg.Client(); err == nil {
			t.Error("Client() should fail for a malformed private key")
		}
	})

	t.Run("app credentials take precedence over token", func(t *testing.T) {
		cfg := &config.GitHub{
			Token: "ghp_dummy",
			AppID: 12345,
		}

		// The app path wins and its validation error surfaces.
		if _, err := cfg.Client(); err == nil {
			t.Error("Client() should validate app credentials even when a token is set")
		}
	})
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/genricoloni/spotled/internal/config"
	"go.uber.org/fx"
)

// TestAppGraphValidity verifies that the dependency graph is resolvable.
// This test will fail if you forget an fx.Provide for a required interface.
func TestAppGraphValidity(t *testing.T) {
	if err := fx.ValidateApp(appOptions("")); err != nil {
		t.Errorf("Dependency graph is not valid: %v", err)
	}
}

// TestNewLogger verifies the logger configuration
func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		log     config.LogConfig
		wantErr bool
	}{
		{"production info", config.LogConfig{Level: "info"}, false},
		{"development debug", config.LogConfig{Level: "debug", Development: true}, false},
		{"unknown level", config.LogConfig{Level: "loud"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := newLogger(&config.AppConfig{Log: tt.log})
			if (err != nil) != tt.wantErr {
				t.Fatalf("newLogger() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if logger == nil {
				t.Fatal("Logger should not be nil")
			}
			logger.Info("Test logger initialization")
		})
	}
}

func TestRootCmd_Commands(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"run", "login", "logout"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag not registered")
	}
}

func TestLogin_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotled.yaml")
	if err := os.WriteFile(path, []byte("source:\n  kind: spotify\n"), 0600); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"login", "--config", path})

	// Spotify credentials are missing
	if err := root.Execute(); err == nil {
		t.Error("login should fail without credentials")
	}
}

func TestLogout_RemovesToken(t *testing.T) {
	dir := t.TempDir()
	token := filepath.Join(dir, "token.json")
	if err := os.WriteFile(token, []byte(`{"access_token":"x"}`), 0600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "spotled.yaml")
	cfg := "source:\n  kind: spotify\n" +
		"spotify:\n  client_id: id\n  client_secret: secret\n  token_path: " + token + "\n"
	if err := os.WriteFile(path, []byte(cfg), 0600); err != nil {
		t.Fatal(err)
	}

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"logout", "--config", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("logout error = %v", err)
	}
	if _, err := os.Stat(token); !os.IsNotExist(err) {
		t.Error("token file still present")
	}
	if !bytes.Contains(out.Bytes(), []byte(token)) {
		t.Errorf("output %q does not name the token file", out.String())
	}
}

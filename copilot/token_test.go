package copilot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOAuthTokenFromFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"hosts.json style", `{"github.com": {"oauth_token": "gho_abc"}}`, "gho_abc", false},
		{"apps.json style", `{"github.com:Iv1.b507a08c87ecfe98": {"oauth_token": "gho_def"}}`, "gho_def", false},
		{"no github entry", `{"gitlab.com": {"oauth_token": "x"}}`, "", true},
		{"empty token", `{"github.com": {"oauth_token": ""}}`, "", true},
		{"invalid json", `{broken`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "hosts.json")
			if err := os.WriteFile(path, []byte(tt.content), 0o600); err != nil {
				t.Fatal(err)
			}

			got, err := oauthTokenFromFile(path)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoadOAuthToken(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	_, err := loadOAuthToken()
	var authErr *AuthenticationError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthenticationError without config, got %v", err)
	}

	copilotDir := filepath.Join(dir, "github-copilot")
	if err = os.MkdirAll(copilotDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err = os.WriteFile(filepath.Join(copilotDir, "apps.json"), []byte(`{"github.com:Iv1.x": {"oauth_token": "gho_fallback"}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	token, err := loadOAuthToken()
	if err != nil {
		t.Fatalf("loadOAuthToken failed: %v", err)
	}
	if token != "gho_fallback" {
		t.Errorf("token = %q", token)
	}

	// hosts.json 优先于 apps.json
	if err = os.WriteFile(filepath.Join(copilotDir, "hosts.json"), []byte(`{"github.com": {"oauth_token": "gho_primary"}}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if token, err = loadOAuthToken(); err != nil {
		t.Fatalf("loadOAuthToken failed: %v", err)
	}
	if token != "gho_primary" {
		t.Errorf("token = %q, want hosts.json entry", token)
	}
}

func TestCopilotTokenExpired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	tests := []struct {
		name  string
		token CopilotToken
		want  bool
	}{
		{"valid", CopilotToken{Token: "t", ExpiresAt: now.Unix() + 60}, false},
		{"expired", CopilotToken{Token: "t", ExpiresAt: now.Unix() - 1}, true},
		{"expires right now", CopilotToken{Token: "t", ExpiresAt: now.Unix()}, true},
		{"empty token", CopilotToken{Token: "", ExpiresAt: now.Unix() + 60}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.Expired(now); got != tt.want {
				t.Errorf("Expired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadCachedToken(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "copilot_token.json")
	if err := os.WriteFile(cachePath, []byte(`{"token": "cached", "expires_at": 99}`), 0o600); err != nil {
		t.Fatal(err)
	}

	client := &Client{cachePath: cachePath, now: time.Now}
	client.loadCachedToken()
	if client.token == nil || client.token.Token != "cached" {
		t.Fatalf("cached token not loaded: %+v", client.token)
	}
}

func TestLoadCachedTokenDropsCorruptCache(t *testing.T) {
	cachePath := filepath.Join(t.TempDir(), "copilot_token.json")
	if err := os.WriteFile(cachePath, []byte(`{broken`), 0o600); err != nil {
		t.Fatal(err)
	}

	client := &Client{cachePath: cachePath, now: time.Now}
	client.loadCachedToken()
	if client.token != nil {
		t.Error("corrupt cache should not yield a token")
	}
	if _, err := os.Stat(cachePath); !os.IsNotExist(err) {
		t.Error("corrupt cache file should be removed")
	}
}

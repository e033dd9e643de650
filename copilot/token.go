package copilot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CopilotToken 是用 GitHub OAuth token 换取的短时会话令牌
type CopilotToken struct {
	Token      string            `json:"token"`
	ExpiresAt  int64             `json:"expires_at"`
	RefreshIn  int64             `json:"refresh_in"`
	Endpoints  map[string]string `json:"endpoints,omitempty"`
	TrackingID string            `json:"tracking_id,omitempty"`
	Sku        string            `json:"sku,omitempty"`
}

func (this *CopilotToken) Expired(now time.Time) bool {
	return this.Token == "" || now.Unix() >= this.ExpiresAt
}

type hostEntry struct {
	OAuthToken string `json:"oauth_token"`
}

// oauthTokenFromFile 从 hosts.json/apps.json 里找 github.com 条目的 oauth_token
func oauthTokenFromFile(path string) (r string, err error) {
	var b []byte
	if b, err = os.ReadFile(path); err != nil {
		err = fmt.Errorf("failed to read copilot config: %w", err)
		return
	}

	var hosts map[string]hostEntry
	if err = json.Unmarshal(b, &hosts); err != nil {
		err = fmt.Errorf("failed to parse copilot config: %w", err)
		return
	}

	for key, entry := range hosts {
		if strings.Contains(key, "github.com") && entry.OAuthToken != "" {
			r = entry.OAuthToken
			return
		}
	}
	err = fmt.Errorf("no github.com entry with an oauth_token in %s", path)
	return
}

func configDir() (r string) {
	if r = os.Getenv("XDG_CONFIG_HOME"); r != "" {
		return
	}
	if home, err := os.UserHomeDir(); err == nil {
		r = filepath.Join(home, ".config")
	}
	return
}

// loadOAuthToken 依次探测 GitHub Copilot 插件的 hosts.json 和 apps.json
func loadOAuthToken() (r string, err error) {
	dir := configDir()
	if dir == "" {
		err = &AuthenticationError{Reason: "cannot determine config directory"}
		return
	}

	files := []string{
		filepath.Join(dir, "github-copilot", "hosts.json"),
		filepath.Join(dir, "github-copilot", "apps.json"),
	}
	for _, file := range files {
		if _, er := os.Stat(file); er != nil {
			continue
		}
		if r, err = oauthTokenFromFile(file); err == nil {
			return
		}
	}

	if err == nil {
		err = &AuthenticationError{Reason: "GitHub Copilot configuration not found, sign in with an editor first"}
		return
	}
	err = &AuthenticationError{Reason: fmt.Sprintf("oauth token not found in GitHub Copilot configuration: %v", err)}
	return
}

package copilot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

const (
	tokenEndpoint = "https://api.github.com/copilot_internal/v2/token"
	chatBaseURL   = "https://api.githubcopilot.com"

	editorPluginVersion = "copilotcli/1.20.0"
	editorVersion       = "vscode/1.100.0"
)

// Client 对接 GitHub Copilot Chat API，兼容 OpenAI 协议
type Client struct {
	mu         sync.Mutex
	oauthToken string
	token      *CopilotToken
	machineID  string
	sessionID  string
	httpClient *http.Client
	cachePath  string
	now        func() time.Time
}

func NewClient() (r *Client) {
	r = &Client{
		machineID:  uuid.NewString(),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cachePath:  filepath.Join(os.TempDir(), "copilot_token.json"),
		now:        time.Now,
	}
	r.loadCachedToken()
	return
}

func (this *Client) loadCachedToken() {
	b, err := os.ReadFile(this.cachePath)
	if err != nil {
		return
	}

	token := &CopilotToken{}
	if err = json.Unmarshal(b, token); err != nil {
		_ = os.Remove(this.cachePath)
		return
	}
	this.token = token
}

func (this *Client) ensureValidToken(ctx context.Context) (err error) {
	this.mu.Lock()
	defer this.mu.Unlock()

	if this.token != nil && !this.token.Expired(this.now()) {
		return
	}
	return this.refreshToken(ctx)
}

func (this *Client) refreshToken(ctx context.Context) (err error) {
	if this.oauthToken == "" {
		if this.oauthToken, err = loadOAuthToken(); err != nil {
			return
		}
	}
	this.sessionID = fmt.Sprintf("%s%d", uuid.NewString(), this.now().UnixMilli())

	var req *http.Request
	if req, err = http.NewRequestWithContext(ctx, http.MethodGet, tokenEndpoint, nil); err != nil {
		err = &APIError{Op: "token", Err: err}
		return
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", this.oauthToken))
	req.Header.Set("Accept", "application/json")
	for k, v := range editorHeaders() {
		req.Header.Set(k, v)
	}

	var resp *http.Response
	if resp, err = this.httpClient.Do(req); err != nil {
		err = &APIError{Op: "token", Err: err}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err = &APIError{Op: "token", Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
		return
	}

	var b []byte
	if b, err = io.ReadAll(resp.Body); err != nil {
		err = &APIError{Op: "token", Err: err}
		return
	}

	token := &CopilotToken{}
	if err = json.Unmarshal(b, token); err != nil {
		err = &APIError{Op: "token", Err: fmt.Errorf("failed to decode token: %w", err)}
		return
	}
	if token.Token == "" {
		err = &AuthenticationError{Reason: "token endpoint returned an empty token"}
		return
	}

	this.token = token
	_ = os.WriteFile(this.cachePath, b, 0o600) // 缓存失败不影响本次会话
	return
}

func editorHeaders() map[string]string {
	return map[string]string{
		"editor-plugin-version": editorPluginVersion,
		"user-agent":            editorPluginVersion,
		"editor-version":        editorVersion,
	}
}

func (this *Client) chatHeaders() (r map[string]string) {
	r = editorHeaders()
	r["vscode-machineid"] = this.machineID
	r["vscode-sessionid"] = this.sessionID
	r["Copilot-Integration-Id"] = "vscode-chat"
	r["openai-organization"] = "github-copilot"
	r["openai-intent"] = "conversation-panel"
	return
}

func (this *Client) chatClient(ctx context.Context) (r *openai.Client, err error) {
	if err = this.ensureValidToken(ctx); err != nil {
		return
	}

	this.mu.Lock()
	cfg := openai.DefaultConfig(this.token.Token)
	cfg.BaseURL = chatBaseURL
	cfg.HTTPClient = &http.Client{
		Transport: &headerTransport{
			Transport: http.DefaultTransport,
			Headers:   this.chatHeaders(),
		},
	}
	this.mu.Unlock()

	r = openai.NewClientWithConfig(cfg)
	return
}

func messages(systemPrompt, prompt string) (r []openai.ChatCompletionMessage) {
	if systemPrompt != "" {
		r = append(r, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	r = append(r, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})
	return
}

// Complete 发送一次非流式对话请求，返回完整应答
func (this *Client) Complete(ctx context.Context, systemPrompt, prompt, model string) (r string, err error) {
	var cli *openai.Client
	if cli, err = this.chatClient(ctx); err != nil {
		return
	}

	var resp openai.ChatCompletionResponse
	if resp, err = cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages(systemPrompt, prompt),
	}); err != nil {
		err = &APIError{Op: "chat completion", Err: err}
		return
	}
	if len(resp.Choices) == 0 {
		err = &APIError{Op: "chat completion", Err: errors.New("response contains no choices")}
		return
	}
	r = resp.Choices[0].Message.Content
	return
}

// Stream 发送流式对话请求，按到达顺序将增量片段交给 emit
func (this *Client) Stream(ctx context.Context, systemPrompt, prompt, model string, emit func(chunk string) error) (err error) {
	var cli *openai.Client
	if cli, err = this.chatClient(ctx); err != nil {
		return
	}

	var stream *openai.ChatCompletionStream
	if stream, err = cli.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages(systemPrompt, prompt),
		Stream:   true,
	}); err != nil {
		err = &APIError{Op: "chat completion stream", Err: err}
		return
	}
	defer stream.Close()

	for {
		var resp openai.ChatCompletionStreamResponse
		if resp, err = stream.Recv(); err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				return
			}
			err = &APIError{Op: "chat completion stream", Err: err}
			return
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		if err = emit(resp.Choices[0].Delta.Content); err != nil {
			return
		}
	}
}

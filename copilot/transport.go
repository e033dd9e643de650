package copilot

import (
	"net/http"

	"github.com/google/uuid"
)

// headerTransport 给每个请求补充 Copilot 编辑器头，并生成独立的 x-request-id
type headerTransport struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("x-request-id", uuid.NewString())
	return t.Transport.RoundTrip(req)
}

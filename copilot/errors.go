package copilot

import "fmt"

type AuthenticationError struct {
	Reason string
}

func (this *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", this.Reason)
}

// APIError 表示 Copilot 后端调用失败，本层只上报不重试
type APIError struct {
	Op  string
	Err error
}

func (this *APIError) Error() string {
	return fmt.Sprintf("copilot %s request failed: %v", this.Op, this.Err)
}

func (this *APIError) Unwrap() error { return this.Err }

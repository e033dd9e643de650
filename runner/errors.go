package runner

import (
	"fmt"
	"strings"
	"time"
)

// ExecutionError 表示命令无法启动或因超时以外的原因中断
type ExecutionError struct {
	Argv []string
	Err  error
}

func (this *ExecutionError) Error() string {
	return fmt.Sprintf("failed to execute command [%s]: %v", strings.Join(this.Argv, " "), this.Err)
}

func (this *ExecutionError) Unwrap() error { return this.Err }

type TimeoutError struct {
	Argv    []string
	Timeout time.Duration
}

func (this *TimeoutError) Error() string {
	return fmt.Sprintf("command [%s] timed out after %s", strings.Join(this.Argv, " "), this.Timeout)
}

type NonZeroExitError struct {
	Argv     []string
	ExitCode int
	Stderr   string
}

func (this *NonZeroExitError) Error() string {
	msg := fmt.Sprintf("command [%s] exited with code %d", strings.Join(this.Argv, " "), this.ExitCode)
	if stderr := strings.TrimSpace(this.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

const DefaultTimeout = 30 * time.Second

type Runner struct {
	DefaultTimeout time.Duration
}

func New() (r *Runner) {
	return &Runner{DefaultTimeout: DefaultTimeout}
}

// Run 在 workdir 下执行一次 argv，返回完整捕获的标准输出。
// 进程结束前不返回任何内容，输出不做流式转发。
// 非零退出时 stdout 仍会返回，便于调用方对容忍失败的命令取用已有输出。
func (this *Runner) Run(ctx context.Context, argv []string, workdir string, timeout time.Duration) (stdout string, err error) {
	if len(argv) == 0 {
		err = &ExecutionError{Argv: argv, Err: errors.New("empty argument vector")}
		return
	}
	if timeout <= 0 {
		timeout = this.DefaultTimeout
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = workdir
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	runErr := cmd.Run()
	stdout = outBuf.String()
	if runErr == nil {
		return
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		err = &TimeoutError{Argv: argv, Timeout: timeout}
		return
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		err = &NonZeroExitError{Argv: argv, ExitCode: exitErr.ExitCode(), Stderr: errBuf.String()}
		return
	}

	err = &ExecutionError{Argv: argv, Err: runErr}
	return
}

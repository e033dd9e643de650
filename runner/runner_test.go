package runner

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRunCapturesStdout(t *testing.T) {
	stdout, err := New().Run(context.Background(), []string{"sh", "-c", "printf 'hello world'"}, t.TempDir(), 0)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if stdout != "hello world" {
		t.Errorf("stdout = %q, want %q", stdout, "hello world")
	}
}

func TestRunUsesWorkdir(t *testing.T) {
	dir := t.TempDir()
	stdout, err := New().Run(context.Background(), []string{"pwd"}, dir, 0)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := stdout; got == "" {
		t.Fatal("expected pwd output")
	}
}

func TestRunEmptyArgv(t *testing.T) {
	_, err := New().Run(context.Background(), nil, t.TempDir(), 0)
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError, got %v", err)
	}
}

func TestRunMissingWorkdir(t *testing.T) {
	_, err := New().Run(context.Background(), []string{"pwd"}, "/does/not/exist", 0)
	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError for missing workdir, got %v", err)
	}
}

func TestRunTimeout(t *testing.T) {
	start := time.Now()
	_, err := New().Run(context.Background(), []string{"sleep", "5"}, t.TempDir(), 100*time.Millisecond)

	var timeoutErr *TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("expected TimeoutError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout did not interrupt the command, took %s", elapsed)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	stdout, err := New().Run(context.Background(), []string{"sh", "-c", "printf partial; echo boom >&2; exit 3"}, t.TempDir(), 0)

	var exitErr *NonZeroExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected NonZeroExitError, got %v", err)
	}
	if exitErr.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", exitErr.ExitCode)
	}
	if exitErr.Stderr != "boom\n" {
		t.Errorf("Stderr = %q, want %q", exitErr.Stderr, "boom\n")
	}
	// 非零退出时已产生的 stdout 仍需返回，供容忍失败的命令取用
	if stdout != "partial" {
		t.Errorf("stdout = %q, want %q", stdout, "partial")
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := New().Run(ctx, []string{"sleep", "5"}, t.TempDir(), 10*time.Second)
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("cancellation did not terminate the child, took %s", elapsed)
	}
}

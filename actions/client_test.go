package actions

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeCatalog(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "actions.yml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestActionClientLoadAndGet(t *testing.T) {
	path := writeCatalog(t, "actions:\n  greet:\n    description: say hi\n    prompt: hi\n    model: gpt-4o\n")

	client, err := NewActionClient(path)
	if err != nil {
		t.Fatalf("NewActionClient failed: %v", err)
	}

	action, err := client.Get("greet")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if action.Name != "greet" || action.Model != "gpt-4o" {
		t.Errorf("unexpected action: %+v", action)
	}
	if client.Catalog().Source() != path {
		t.Errorf("Source() = %q", client.Catalog().Source())
	}
}

func TestActionClientGetUnknown(t *testing.T) {
	path := writeCatalog(t, "actions:\n  greet:\n    prompt: hi\n    model: m\n")

	client, err := NewActionClient(path)
	if err != nil {
		t.Fatalf("NewActionClient failed: %v", err)
	}

	_, err = client.Get("nope")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if notFound.Name != "nope" {
		t.Errorf("Name = %q", notFound.Name)
	}
}

func TestActionClientLoadFailsEagerly(t *testing.T) {
	path := writeCatalog(t, "actions:\n  broken:\n    prompt: \"$undeclared\"\n    model: m\n")

	_, err := NewActionClient(path)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError at load time, got %v", err)
	}
}

func TestActionClientReloadSwapsCatalog(t *testing.T) {
	path := writeCatalog(t, "actions:\n  one:\n    prompt: a\n    model: m\n")

	client, err := NewActionClient(path)
	if err != nil {
		t.Fatalf("NewActionClient failed: %v", err)
	}
	old := client.Catalog()

	if err = os.WriteFile(path, []byte("actions:\n  one:\n    prompt: a\n    model: m\n  two:\n    prompt: b\n    model: m\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err = client.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if client.Catalog() == old {
		t.Error("Reload did not swap the catalog")
	}
	if client.Catalog().Len() != 2 {
		t.Errorf("Len() = %d, want 2", client.Catalog().Len())
	}
	// 旧目录保持不变，持有者可以继续安全使用
	if old.Len() != 1 {
		t.Errorf("old catalog mutated, Len() = %d", old.Len())
	}
}

func TestActionClientReloadKeepsOldOnError(t *testing.T) {
	path := writeCatalog(t, "actions:\n  one:\n    prompt: a\n    model: m\n")

	client, err := NewActionClient(path)
	if err != nil {
		t.Fatalf("NewActionClient failed: %v", err)
	}

	if err = os.WriteFile(path, []byte("{{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err = client.Reload(); err == nil {
		t.Fatal("expected Reload to fail on broken catalog")
	}

	if _, err = client.Get("one"); err != nil {
		t.Errorf("old catalog lost after failed reload: %v", err)
	}
}

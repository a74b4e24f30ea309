package workspace

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPrepare(t *testing.T) {
	workRoot := t.TempDir()

	layout, err := Prepare(workRoot, "run-1", []byte("def main():\n    return 1\n"), []byte("# harness\n"))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	if layout.RootDir != filepath.Join(workRoot, "run-1") {
		t.Fatalf("root dir = %s", layout.RootDir)
	}

	info, err := os.Stat(layout.RootDir)
	if err != nil {
		t.Fatalf("stat scratch dir: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0777 {
		t.Fatalf("scratch dir perm = %o, want 0777", perm)
	}

	script, err := os.ReadFile(layout.ScriptPath)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if string(script) != "def main():\n    return 1\n" {
		t.Fatalf("unexpected script contents: %q", script)
	}

	if _, err := os.Stat(layout.BootstrapPath); err != nil {
		t.Fatalf("bootstrap not written: %v", err)
	}
	if _, err := os.Stat(layout.ResultPath); !os.IsNotExist(err) {
		t.Fatalf("result file should not exist before the run, got %v", err)
	}
}

func TestPrepare_Validation(t *testing.T) {
	if _, err := Prepare("", "run-1", nil, nil); err == nil {
		t.Fatal("expected error for empty work root")
	}
	if _, err := Prepare(t.TempDir(), "", nil, nil); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestCleanup(t *testing.T) {
	workRoot := t.TempDir()

	layout, err := Prepare(workRoot, "run-2", []byte("x"), []byte("y"))
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}

	layout.Cleanup()
	if _, err := os.Stat(layout.RootDir); !os.IsNotExist(err) {
		t.Fatalf("scratch dir still present after cleanup: %v", err)
	}

	// Safe to call again and on a zero layout.
	layout.Cleanup()
	Layout{}.Cleanup()
}

// Package workspace manages the per-run scratch directory layout.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	scriptFileName    = "script.py"
	bootstrapFileName = "_bootstrap.py"
	resultFileName    = "result.json"
	stdoutFileName    = "stdout.txt"
	stderrFileName    = "stderr.txt"
)

// Layout describes the filesystem layout for one run. All paths are host
// paths; the scratch directory is the only writable location exposed to the
// sandboxed process.
type Layout struct {
	RunID         string
	RootDir       string
	ScriptPath    string
	BootstrapPath string
	ResultPath    string
	StdoutPath    string
	StderrPath    string
}

// Prepare creates the scratch directory for one run and writes the submitted
// script and the bootstrap harness into it.
func Prepare(workRoot, runID string, script, bootstrap []byte) (Layout, error) {
	if workRoot == "" {
		return Layout{}, fmt.Errorf("work root is required")
	}
	if runID == "" {
		return Layout{}, fmt.Errorf("run id is required")
	}

	rootDir := filepath.Join(workRoot, runID)
	if err := os.MkdirAll(rootDir, 0777); err != nil {
		return Layout{}, fmt.Errorf("create scratch dir: %w", err)
	}
	// The sandboxed process runs under a mapped identity; keep the scratch
	// directory writable for it.
	if err := os.Chmod(rootDir, 0777); err != nil {
		_ = os.RemoveAll(rootDir)
		return Layout{}, fmt.Errorf("chmod scratch dir: %w", err)
	}

	layout := Layout{
		RunID:         runID,
		RootDir:       rootDir,
		ScriptPath:    filepath.Join(rootDir, scriptFileName),
		BootstrapPath: filepath.Join(rootDir, bootstrapFileName),
		ResultPath:    filepath.Join(rootDir, resultFileName),
		StdoutPath:    filepath.Join(rootDir, stdoutFileName),
		StderrPath:    filepath.Join(rootDir, stderrFileName),
	}

	if err := os.WriteFile(layout.ScriptPath, script, 0644); err != nil {
		_ = os.RemoveAll(rootDir)
		return Layout{}, fmt.Errorf("write script: %w", err)
	}
	if err := os.WriteFile(layout.BootstrapPath, bootstrap, 0644); err != nil {
		_ = os.RemoveAll(rootDir)
		return Layout{}, fmt.Errorf("write bootstrap: %w", err)
	}

	return layout, nil
}

// ScriptName returns the script file name relative to the scratch directory.
func (l Layout) ScriptName() string { return scriptFileName }

// BootstrapName returns the bootstrap file name relative to the scratch directory.
func (l Layout) BootstrapName() string { return bootstrapFileName }

// ResultName returns the result file name relative to the scratch directory.
func (l Layout) ResultName() string { return resultFileName }

// StdoutName returns the stdout capture file name relative to the scratch directory.
func (l Layout) StdoutName() string { return stdoutFileName }

// StderrName returns the stderr capture file name relative to the scratch directory.
func (l Layout) StderrName() string { return stderrFileName }

// Cleanup removes the scratch directory and everything in it. Safe to call
// on every exit path, including after failed preparation.
func (l Layout) Cleanup() {
	if l.RootDir == "" {
		return
	}
	_ = os.RemoveAll(l.RootDir)
}

package executor

import (
	_ "embed"
	"path/filepath"

	"runbox/internal/sandbox/workspace"
)

// bootstrapSource is the Python harness written into every scratch directory.
// It owns the result channel; the script owns stdout/stderr.
//
//go:embed bootstrap.py
var bootstrapSource []byte

// BootstrapSource returns the embedded entry-point harness.
func BootstrapSource() []byte {
	return bootstrapSource
}

// buildCommand assembles the interpreter invocation for one run. Paths are
// expressed relative to sandboxDir, the scratch directory as the sandboxed
// process sees it.
func buildCommand(interpreter []string, layout workspace.Layout, sandboxDir string) []string {
	cmd := make([]string, 0, len(interpreter)+3)
	cmd = append(cmd, interpreter...)
	cmd = append(cmd,
		filepath.Join(sandboxDir, layout.BootstrapName()),
		filepath.Join(sandboxDir, layout.ResultName()),
		filepath.Join(sandboxDir, layout.ScriptName()),
	)
	return cmd
}

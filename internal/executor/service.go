// Package executor drives one script execution end to end: static contract
// validation, scratch workspace preparation, sandbox launch, and outcome
// classification.
package executor

import (
	"context"
	"fmt"
	"path/filepath"

	"runbox/internal/sandbox/engine"
	"runbox/internal/sandbox/spec"
	"runbox/internal/sandbox/workspace"
	"runbox/pkg/utils/contextkey"
	"runbox/pkg/utils/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Policy is the immutable per-run execution policy. It is built once at
// startup from configuration and shared read-only across concurrent requests.
type Policy struct {
	// WorkRoot is the host directory under which per-run scratch
	// directories are created.
	WorkRoot string
	// SandboxDir is the scratch directory path as the sandboxed process
	// sees it. Empty means host paths are used directly (namespaces off).
	SandboxDir string
	// Interpreter is the argv prefix of the interpreter command.
	Interpreter []string
	// Env is the fixed, minimal environment handed to the sandbox.
	Env []string
	// BindMounts are the static read-only mounts exposing the interpreter,
	// its standard library and the permitted data/numeric libraries.
	BindMounts []spec.MountSpec
	// Limits are the per-run resource ceilings.
	Limits spec.ResourceLimit
	// MaxScriptBytes caps the accepted script size.
	MaxScriptBytes int64
	// MaxResultBytes caps the result-channel read.
	MaxResultBytes int64
	// ScreenImports enables the static import allow-list scan.
	ScreenImports bool
}

// Service executes untrusted scripts. Safe for concurrent use; runs share
// nothing but the immutable policy and the engine configuration.
type Service struct {
	engine engine.Engine
	policy Policy
}

// NewService creates an execution service.
func NewService(eng engine.Engine, policy Policy) (*Service, error) {
	if eng == nil {
		return nil, fmt.Errorf("engine is required")
	}
	if policy.WorkRoot == "" {
		return nil, fmt.Errorf("work root is required")
	}
	if len(policy.Interpreter) == 0 {
		return nil, fmt.Errorf("interpreter command is required")
	}
	return &Service{engine: eng, policy: policy}, nil
}

// Execute runs one script and returns its classified outcome. Exactly one
// outcome is produced per call; sandbox-side faults surface as
// OutcomeSandboxFailure and are logged, never echoed to the caller.
func (s *Service) Execute(ctx context.Context, script string) Outcome {
	if verr := ValidateScript(script, s.policy); verr != nil {
		return contractOutcome(verr.Code, verr.Error(), "")
	}

	runID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.RunID, runID)

	layout, err := workspace.Prepare(s.policy.WorkRoot, runID, []byte(script), bootstrapSource)
	if err != nil {
		logger.Error(ctx, "workspace preparation failed", zap.Error(err))
		return sandboxFailureOutcome()
	}
	defer layout.Cleanup()

	runSpec := s.buildRunSpec(runID, layout)

	run, err := s.engine.Run(ctx, runSpec)
	if err != nil {
		logger.Error(ctx, "sandbox run failed", zap.Error(err))
		return sandboxFailureOutcome()
	}

	record := readResultRecord(layout.ResultPath, s.policy.MaxResultBytes)
	outcome := classify(run, record, s.policy.Limits)

	logger.Info(ctx, "execution finished",
		zap.String("outcome", string(outcome.Kind)),
		zap.Int("exit_code", run.ExitCode),
		zap.Int64("wall_time_ms", run.WallTimeMs),
		zap.Int64("cpu_time_ms", run.CPUTimeMs),
		zap.Int64("memory_kb", run.MemoryKB),
	)
	return outcome
}

// buildRunSpec maps the policy and scratch layout onto one sandbox run.
// When SandboxDir is set the scratch directory is bind-mounted there and all
// paths handed to the sandbox are expressed under it.
func (s *Service) buildRunSpec(runID string, layout workspace.Layout) spec.RunSpec {
	sandboxDir := s.policy.SandboxDir
	mounts := s.policy.BindMounts
	if sandboxDir != "" {
		mounts = append(append([]spec.MountSpec{}, mounts...), spec.MountSpec{
			Source: layout.RootDir,
			Target: sandboxDir,
		})
	} else {
		sandboxDir = layout.RootDir
	}

	return spec.RunSpec{
		RunID:      runID,
		WorkDir:    sandboxDir,
		Cmd:        buildCommand(s.policy.Interpreter, layout, sandboxDir),
		Env:        s.policy.Env,
		StdoutPath: filepath.Join(sandboxDir, layout.StdoutName()),
		StderrPath: filepath.Join(sandboxDir, layout.StderrName()),
		BindMounts: mounts,
		Limits:     s.policy.Limits,
	}
}

package executor

import (
	"encoding/json"

	"runbox/pkg/errors"
)

// OutcomeKind is the outcome family of one execution.
type OutcomeKind string

const (
	OutcomeSuccess           OutcomeKind = "success"
	OutcomeContractViolation OutcomeKind = "contract_violation"
	OutcomeRuntimeFailure    OutcomeKind = "runtime_failure"
	OutcomeResourceExceeded  OutcomeKind = "resource_exceeded"
	OutcomeSandboxFailure    OutcomeKind = "sandbox_failure"
)

// LimitKind names the resource limit behind an OutcomeResourceExceeded.
type LimitKind string

const (
	LimitTime      LimitKind = "time"
	LimitMemory    LimitKind = "memory"
	LimitProcesses LimitKind = "process-count"
)

// Outcome is the single classified result of one execution request. Every
// run produces exactly one Outcome, success included.
type Outcome struct {
	Kind   OutcomeKind
	Code   errors.ErrorCode // populated for non-success kinds
	Result json.RawMessage  // parsed JSON result, success only
	Stdout string           // captured console output, truncation marker applied
	Detail string           // bounded, sandbox-derived diagnostic for client-fault kinds
	Limit  LimitKind        // which limit was hit, resource-exceeded only
}

func successOutcome(value json.RawMessage, stdout string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Code: errors.Success, Result: value, Stdout: stdout}
}

func contractOutcome(code errors.ErrorCode, detail, stdout string) Outcome {
	return Outcome{Kind: OutcomeContractViolation, Code: code, Detail: detail, Stdout: stdout}
}

func runtimeOutcome(detail, stdout string) Outcome {
	return Outcome{Kind: OutcomeRuntimeFailure, Code: errors.RuntimeFailure, Detail: detail, Stdout: stdout}
}

func limitOutcome(limit LimitKind, stdout string) Outcome {
	code := errors.TimeLimitExceeded
	switch limit {
	case LimitMemory:
		code = errors.MemoryLimitExceeded
	case LimitProcesses:
		code = errors.ProcessLimitExceeded
	}
	return Outcome{Kind: OutcomeResourceExceeded, Code: code, Limit: limit, Stdout: stdout}
}

func sandboxFailureOutcome() Outcome {
	// No script- or host-derived detail crosses this boundary; the cause is
	// logged server-side only.
	return Outcome{Kind: OutcomeSandboxFailure, Code: errors.SandboxFailure}
}

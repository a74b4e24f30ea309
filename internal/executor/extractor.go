package executor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"runbox/internal/sandbox/result"
	"runbox/internal/sandbox/spec"
	"runbox/pkg/errors"
)

const (
	truncationMarker     = "\n...[output truncated]"
	maxStderrDetailBytes = 2048

	// SIGXCPU, delivered when the kernel's CPU rlimit fires.
	sigXCPU = 24
)

// resultRecord is the wire format the bootstrap harness writes to the
// result channel.
type resultRecord struct {
	Status string          `json:"status"`
	Value  json.RawMessage `json:"value"`
	Detail string          `json:"detail"`
}

// classify maps one finished sandbox run onto exactly one outcome.
// Limit enforcement takes priority over exit-status interpretation, and a
// clean exit is only a success when the result channel holds a valid record.
func classify(run result.RunResult, record []byte, limits spec.ResourceLimit) Outcome {
	stdout := run.Stdout
	if run.StdoutTruncated {
		stdout += truncationMarker
	}

	if run.TimedOut {
		return limitOutcome(LimitTime, stdout)
	}
	if run.OomKilled {
		return limitOutcome(LimitMemory, stdout)
	}
	if run.Signal == sigXCPU || (!run.Clean() && limits.CPUTimeMs > 0 && run.CPUTimeMs >= limits.CPUTimeMs) {
		return limitOutcome(LimitTime, stdout)
	}
	if run.PidsExhausted && !run.Clean() {
		return limitOutcome(LimitProcesses, stdout)
	}

	if !run.Clean() {
		return runtimeOutcome(crashDetail(run), stdout)
	}

	rec, ok := parseRecord(record)
	if !ok {
		return contractOutcome(errors.ResultRecordInvalid, "", stdout)
	}

	switch rec.Status {
	case "ok":
		if len(rec.Value) == 0 || !json.Valid(rec.Value) {
			return contractOutcome(errors.ResultRecordInvalid, "", stdout)
		}
		return successOutcome(rec.Value, stdout)
	case "contract":
		code := errors.ContractViolation
		if strings.Contains(rec.Detail, "JSON-representable") {
			code = errors.ResultNotSerializable
		} else if strings.Contains(rec.Detail, "callable main") {
			code = errors.MissingEntryPoint
		}
		return contractOutcome(code, rec.Detail, stdout)
	case "runtime":
		return runtimeOutcome(rec.Detail, stdout)
	default:
		return contractOutcome(errors.ResultRecordInvalid, "", stdout)
	}
}

func parseRecord(record []byte) (resultRecord, bool) {
	if len(record) == 0 {
		return resultRecord{}, false
	}
	var rec resultRecord
	if err := json.Unmarshal(record, &rec); err != nil {
		return resultRecord{}, false
	}
	if rec.Status == "" {
		return resultRecord{}, false
	}
	return rec, true
}

// crashDetail builds a bounded diagnostic from an abnormal exit. Stderr is
// produced inside the sandbox, so it carries no host internals; it is still
// capped so a hostile script cannot inflate the response.
func crashDetail(run result.RunResult) string {
	stderr := strings.TrimSpace(run.Stderr)
	if len(stderr) > maxStderrDetailBytes {
		cut := len(stderr) - maxStderrDetailBytes
		// Advance past any continuation bytes so the excerpt starts on a
		// rune boundary.
		for cut < len(stderr) && !utf8.RuneStart(stderr[cut]) {
			cut++
		}
		stderr = stderr[cut:]
	}
	if stderr != "" {
		return stderr
	}
	if run.Signal > 0 {
		return fmt.Sprintf("script terminated by signal %d", run.Signal)
	}
	return fmt.Sprintf("script exited with status %d", run.ExitCode)
}

// readResultRecord reads the result channel file with a hard cap. A missing
// or oversized file yields nil; classification treats that as an absent
// record.
func readResultRecord(path string, maxBytes int64) []byte {
	if path == "" || maxBytes <= 0 {
		return nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil
	}
	if int64(len(data)) > maxBytes {
		return nil
	}
	return data
}

package executor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"runbox/internal/sandbox/result"
	"runbox/internal/sandbox/spec"
	"runbox/pkg/errors"
)

func testLimits() spec.ResourceLimit {
	return spec.ResourceLimit{
		CPUTimeMs:  5000,
		WallTimeMs: 5000,
		MemoryMB:   256,
		PIDs:       16,
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		run        result.RunResult
		record     string
		wantKind   OutcomeKind
		wantCode   errors.ErrorCode
		wantLimit  LimitKind
		wantResult string
		wantStdout string
		wantDetail string
	}{
		{
			name:       "success with object result",
			run:        result.RunResult{ExitCode: 0},
			record:     `{"status":"ok","value":{"a":1}}`,
			wantKind:   OutcomeSuccess,
			wantResult: `{"a":1}`,
		},
		{
			name:       "success with scalar result and stdout",
			run:        result.RunResult{ExitCode: 0, Stdout: "hi\n"},
			record:     `{"status":"ok","value":42}`,
			wantKind:   OutcomeSuccess,
			wantResult: `42`,
			wantStdout: "hi\n",
		},
		{
			name:       "success with null result",
			run:        result.RunResult{ExitCode: 0},
			record:     `{"status":"ok","value":null}`,
			wantKind:   OutcomeSuccess,
			wantResult: `null`,
		},
		{
			name:     "wall clock timeout wins over everything",
			run:      result.RunResult{TimedOut: true, Signal: 9, ExitCode: -1},
			record:   `{"status":"ok","value":1}`,
			wantKind: OutcomeResourceExceeded,
			wantCode: errors.TimeLimitExceeded,

			wantLimit: LimitTime,
		},
		{
			name:      "oom kill",
			run:       result.RunResult{Signal: 9, ExitCode: -1, OomKilled: true},
			wantKind:  OutcomeResourceExceeded,
			wantCode:  errors.MemoryLimitExceeded,
			wantLimit: LimitMemory,
		},
		{
			name:      "cpu rlimit signal",
			run:       result.RunResult{Signal: sigXCPU, ExitCode: -1},
			wantKind:  OutcomeResourceExceeded,
			wantCode:  errors.TimeLimitExceeded,
			wantLimit: LimitTime,
		},
		{
			name:      "cpu time at limit",
			run:       result.RunResult{Signal: 9, ExitCode: -1, CPUTimeMs: 5000},
			wantKind:  OutcomeResourceExceeded,
			wantCode:  errors.TimeLimitExceeded,
			wantLimit: LimitTime,
		},
		{
			name:       "clean exit at the cpu budget stays success",
			run:        result.RunResult{ExitCode: 0, CPUTimeMs: 5000},
			record:     `{"status":"ok","value":1}`,
			wantKind:   OutcomeSuccess,
			wantResult: `1`,
		},
		{
			name:      "fork bomb hit pids limit",
			run:       result.RunResult{ExitCode: 1, PidsExhausted: true},
			wantKind:  OutcomeResourceExceeded,
			wantCode:  errors.ProcessLimitExceeded,
			wantLimit: LimitProcesses,
		},
		{
			name:     "pids events with clean exit stay success",
			run:      result.RunResult{ExitCode: 0, PidsExhausted: true},
			record:   `{"status":"ok","value":true}`,
			wantKind: OutcomeSuccess,

			wantResult: `true`,
		},
		{
			name:       "abnormal exit uses stderr",
			run:        result.RunResult{ExitCode: 1, Stderr: "Traceback: boom\n"},
			wantKind:   OutcomeRuntimeFailure,
			wantCode:   errors.RuntimeFailure,
			wantDetail: "Traceback: boom",
		},
		{
			name:       "killed by signal without stderr",
			run:        result.RunResult{ExitCode: -1, Signal: 11},
			wantKind:   OutcomeRuntimeFailure,
			wantCode:   errors.RuntimeFailure,
			wantDetail: "script terminated by signal 11",
		},
		{
			name:     "clean exit without record",
			run:      result.RunResult{ExitCode: 0},
			wantKind: OutcomeContractViolation,
			wantCode: errors.ResultRecordInvalid,
		},
		{
			name:     "clean exit with malformed record",
			run:      result.RunResult{ExitCode: 0},
			record:   `{"status":`,
			wantKind: OutcomeContractViolation,
			wantCode: errors.ResultRecordInvalid,
		},
		{
			name:     "clean exit with unknown status",
			run:      result.RunResult{ExitCode: 0},
			record:   `{"status":"weird"}`,
			wantKind: OutcomeContractViolation,
			wantCode: errors.ResultRecordInvalid,
		},
		{
			name:     "harness reported unserializable result",
			run:      result.RunResult{ExitCode: 0},
			record:   `{"status":"contract","detail":"main() return value is not JSON-representable: circular reference"}`,
			wantKind: OutcomeContractViolation,
			wantCode: errors.ResultNotSerializable,
		},
		{
			name:     "harness reported missing entry point",
			run:      result.RunResult{ExitCode: 0},
			record:   `{"status":"contract","detail":"script does not define a callable main()"}`,
			wantKind: OutcomeContractViolation,
			wantCode: errors.MissingEntryPoint,
		},
		{
			name:       "harness reported runtime error",
			run:        result.RunResult{ExitCode: 0, Stdout: "partial\n"},
			record:     `{"status":"runtime","detail":"ValueError: x"}`,
			wantKind:   OutcomeRuntimeFailure,
			wantCode:   errors.RuntimeFailure,
			wantDetail: "ValueError: x",
			wantStdout: "partial\n",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			outcome := classify(tt.run, []byte(tt.record), testLimits())
			if outcome.Kind != tt.wantKind {
				t.Fatalf("kind = %s, want %s", outcome.Kind, tt.wantKind)
			}
			if tt.wantCode != 0 && outcome.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d", outcome.Code, tt.wantCode)
			}
			if tt.wantLimit != "" && outcome.Limit != tt.wantLimit {
				t.Fatalf("limit = %s, want %s", outcome.Limit, tt.wantLimit)
			}
			if tt.wantResult != "" && string(outcome.Result) != tt.wantResult {
				t.Fatalf("result = %s, want %s", outcome.Result, tt.wantResult)
			}
			if outcome.Stdout != tt.wantStdout {
				t.Fatalf("stdout = %q, want %q", outcome.Stdout, tt.wantStdout)
			}
			if tt.wantDetail != "" && outcome.Detail != tt.wantDetail {
				t.Fatalf("detail = %q, want %q", outcome.Detail, tt.wantDetail)
			}
		})
	}
}

func TestClassify_TruncationMarker(t *testing.T) {
	run := result.RunResult{ExitCode: 0, Stdout: "aaaa", StdoutTruncated: true}
	outcome := classify(run, []byte(`{"status":"ok","value":1}`), testLimits())
	if !strings.HasSuffix(outcome.Stdout, truncationMarker) {
		t.Fatalf("expected truncation marker, got %q", outcome.Stdout)
	}
	if !strings.HasPrefix(outcome.Stdout, "aaaa") {
		t.Fatalf("expected captured prefix to be preserved, got %q", outcome.Stdout)
	}
}

func TestCrashDetail_CapsStderr(t *testing.T) {
	long := strings.Repeat("x", maxStderrDetailBytes*2)
	run := result.RunResult{ExitCode: 1, Stderr: long}
	detail := crashDetail(run)
	if len(detail) != maxStderrDetailBytes {
		t.Fatalf("detail length = %d, want %d", len(detail), maxStderrDetailBytes)
	}
}

func TestCrashDetail_CutOnRuneBoundary(t *testing.T) {
	// Three-byte runes put the byte cap mid-rune; the excerpt must still be
	// valid UTF-8.
	long := strings.Repeat("中", maxStderrDetailBytes)
	run := result.RunResult{ExitCode: 1, Stderr: long}
	detail := crashDetail(run)
	if !utf8.ValidString(detail) {
		t.Fatalf("detail is not valid UTF-8: %q...", detail[:8])
	}
	if len(detail) > maxStderrDetailBytes {
		t.Fatalf("detail length = %d", len(detail))
	}
}

func TestReadResultRecord(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "result.json")
	if err := os.WriteFile(path, []byte(`{"status":"ok","value":1}`), 0644); err != nil {
		t.Fatalf("write record: %v", err)
	}

	if got := readResultRecord(path, 1024); string(got) != `{"status":"ok","value":1}` {
		t.Fatalf("unexpected record: %s", got)
	}
	if got := readResultRecord(filepath.Join(dir, "missing.json"), 1024); got != nil {
		t.Fatalf("expected nil for missing file, got %s", got)
	}
	if got := readResultRecord(path, 4); got != nil {
		t.Fatalf("expected nil for oversized record, got %s", got)
	}
}

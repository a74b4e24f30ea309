// Package result defines raw sandbox execution results.
package result

// RunResult captures raw sandbox execution data for one run. Classification
// into an outcome happens in the executor layer; this struct only records
// what the process did and how the isolation layer terminated it.
type RunResult struct {
	ExitCode        int
	Signal          int // termination signal when the process died on one, 0 otherwise
	TimedOut        bool
	OomKilled       bool
	PidsExhausted   bool
	CPUTimeMs       int64
	WallTimeMs      int64
	MemoryKB        int64
	Stdout          string
	StdoutTruncated bool
	Stderr          string
	StderrTruncated bool
}

// Clean reports whether the process exited normally with status 0.
func (r RunResult) Clean() bool {
	return !r.TimedOut && r.Signal == 0 && r.ExitCode == 0
}

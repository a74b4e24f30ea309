package engine

import "runbox/internal/sandbox/security"

// Config controls sandbox engine behavior. It is built once at startup and
// shared read-only across concurrent runs.
type Config struct {
	CgroupRoot           string
	HelperPath           string
	Isolation            security.IsolationProfile
	StdoutStderrMaxBytes int64
	EnableSeccomp        bool
	EnableCgroup         bool
	EnableNamespaces     bool
}

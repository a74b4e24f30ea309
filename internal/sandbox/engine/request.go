package engine

import (
	"runbox/internal/sandbox/security"
	"runbox/internal/sandbox/spec"
)

// initRequest is the wire format handed to the sandbox-init helper on stdin.
// cmd/sandbox-init keeps a mirror of these types.
type initRequest struct {
	RunSpec       spec.RunSpec
	Isolation     security.IsolationProfile
	EnableSeccomp bool
	EnableNs      bool
}

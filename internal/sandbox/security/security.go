// Package security defines sandbox isolation and security profiles.
package security

// IsolationProfile describes namespace and seccomp settings applied to every run.
type IsolationProfile struct {
	RootFS         string `yaml:"rootfs"`
	SeccompProfile string `yaml:"seccompProfile"`
	DisableNetwork bool   `yaml:"disableNetwork"`
}

package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runbox.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppConfig_Defaults(t *testing.T) {
	path := writeConfig(t, "sandbox:\n  workRoot: /tmp/runbox-work\n")

	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.Addr != defaultHTTPAddr {
		t.Fatalf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != defaultReadTimeout {
		t.Fatalf("read timeout = %s", cfg.Server.ReadTimeout)
	}
	if cfg.Sandbox.Interpreter != defaultInterpreter {
		t.Fatalf("interpreter = %s", cfg.Sandbox.Interpreter)
	}
	if cfg.Sandbox.StdoutStderrMaxBytes != defaultStreamMaxByte {
		t.Fatalf("stream cap = %d", cfg.Sandbox.StdoutStderrMaxBytes)
	}
	if cfg.Limits.CPUTimeMs != defaultCPUTimeMs || cfg.Limits.WallTimeMs != defaultWallTimeMs {
		t.Fatalf("time limits = %d/%d", cfg.Limits.CPUTimeMs, cfg.Limits.WallTimeMs)
	}
	if cfg.Limits.MaxScriptBytes != defaultMaxScript {
		t.Fatalf("script cap = %d", cfg.Limits.MaxScriptBytes)
	}
	if cfg.Limits.MaxResultBytes != defaultMaxResult {
		t.Fatalf("result cap = %d", cfg.Limits.MaxResultBytes)
	}
	if cfg.Limits.PIDs != defaultPIDs {
		t.Fatalf("pids = %d", cfg.Limits.PIDs)
	}
}

func TestLoadAppConfig_Overrides(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: "127.0.0.1:9000"
  readTimeout: 2s
sandbox:
  workRoot: /data/work
  interpreter: "/opt/python/bin/python3 -I"
limits:
  cpuTimeMs: 2000
  wallTimeMs: 3000
  memoryMB: 128
`)

	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Fatalf("addr = %s", cfg.Server.Addr)
	}
	if cfg.Server.ReadTimeout != 2*time.Second {
		t.Fatalf("read timeout = %s", cfg.Server.ReadTimeout)
	}
	if cfg.Limits.CPUTimeMs != 2000 || cfg.Limits.WallTimeMs != 3000 || cfg.Limits.MemoryMB != 128 {
		t.Fatalf("limits = %+v", cfg.Limits)
	}
	// Unset fields still pick up defaults.
	if cfg.Limits.PIDs != defaultPIDs {
		t.Fatalf("pids = %d", cfg.Limits.PIDs)
	}
}

func TestLoadAppConfig_Validation(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name:    "missing work root",
			content: "server:\n  addr: \"127.0.0.1:9000\"\n",
		},
		{
			name:    "cgroup without root",
			content: "sandbox:\n  workRoot: /tmp/w\n  enableCgroup: true\n",
		},
		{
			name:    "sandboxDir without namespaces",
			content: "sandbox:\n  workRoot: /tmp/w\n  sandboxDir: /box\n",
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := loadAppConfig(path); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestLoadAppConfig_MissingFile(t *testing.T) {
	if _, err := loadAppConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestToPolicy_InterpreterParsing(t *testing.T) {
	path := writeConfig(t, `
sandbox:
  workRoot: /tmp/w
  interpreter: '/usr/local/bin/python3 -u -B'
`)
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	policy, err := cfg.toPolicy()
	if err != nil {
		t.Fatalf("to policy: %v", err)
	}
	want := []string{"/usr/local/bin/python3", "-u", "-B"}
	if !reflect.DeepEqual(policy.Interpreter, want) {
		t.Fatalf("interpreter = %v, want %v", policy.Interpreter, want)
	}
	if policy.Limits.WallTimeMs != defaultWallTimeMs {
		t.Fatalf("wall limit = %d", policy.Limits.WallTimeMs)
	}
	if policy.MaxScriptBytes != defaultMaxScript {
		t.Fatalf("script cap = %d", policy.MaxScriptBytes)
	}
}

func TestToPolicy_QuotedInterpreterArgs(t *testing.T) {
	path := writeConfig(t, `
sandbox:
  workRoot: /tmp/w
  interpreter: '"/opt/my python/bin/python3" -u'
`)
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	policy, err := cfg.toPolicy()
	if err != nil {
		t.Fatalf("to policy: %v", err)
	}
	want := []string{"/opt/my python/bin/python3", "-u"}
	if !reflect.DeepEqual(policy.Interpreter, want) {
		t.Fatalf("interpreter = %v, want %v", policy.Interpreter, want)
	}
}

func TestToEngineConfig(t *testing.T) {
	path := writeConfig(t, `
sandbox:
  workRoot: /tmp/w
  helperPath: /usr/local/bin/sandbox-init
  cgroupRoot: /sys/fs/cgroup/runbox
  enableCgroup: true
  enableNamespaces: true
  enableSeccomp: true
  sandboxDir: /box
  isolation:
    rootfs: /var/lib/runbox/rootfs
    seccompProfile: /etc/runbox/seccomp/python.json
    disableNetwork: true
`)
	cfg, err := loadAppConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	engCfg := cfg.toEngineConfig()
	if engCfg.HelperPath != "/usr/local/bin/sandbox-init" {
		t.Fatalf("helper path = %s", engCfg.HelperPath)
	}
	if engCfg.CgroupRoot != "/sys/fs/cgroup/runbox" {
		t.Fatalf("cgroup root = %s", engCfg.CgroupRoot)
	}
	if !engCfg.EnableCgroup || !engCfg.EnableNamespaces || !engCfg.EnableSeccomp {
		t.Fatalf("enforcement flags = %+v", engCfg)
	}
	if engCfg.Isolation.RootFS != "/var/lib/runbox/rootfs" {
		t.Fatalf("rootfs = %s", engCfg.Isolation.RootFS)
	}
	if !engCfg.Isolation.DisableNetwork {
		t.Fatal("network isolation not carried over")
	}
}

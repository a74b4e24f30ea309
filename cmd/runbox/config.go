package main

import (
	"fmt"
	"os"

	"time"

	"runbox/internal/executor"
	"runbox/internal/sandbox/engine"
	"runbox/internal/sandbox/security"
	"runbox/internal/sandbox/spec"
	"runbox/pkg/utils/logger"

	"github.com/google/shlex"
	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "0.0.0.0:8080"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second

	defaultInterpreter = "/usr/local/bin/python3 -u -B"

	defaultCPUTimeMs     = 5000
	defaultWallTimeMs    = 5000
	defaultMemoryMB      = 256
	defaultStackMB       = 64
	defaultOutputMB      = 16
	defaultPIDs          = 16
	defaultMaxScript     = 1 << 20 // 1 MiB
	defaultMaxResult     = 256 << 10
	defaultStreamMaxByte = 64 << 10
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	IdleTimeout  time.Duration `yaml:"idleTimeout"`
}

// SandboxConfig holds sandbox engine and policy settings.
type SandboxConfig struct {
	HelperPath           string                    `yaml:"helperPath"`
	CgroupRoot           string                    `yaml:"cgroupRoot"`
	EnableCgroup         bool                      `yaml:"enableCgroup"`
	EnableNamespaces     bool                      `yaml:"enableNamespaces"`
	EnableSeccomp        bool                      `yaml:"enableSeccomp"`
	Isolation            security.IsolationProfile `yaml:"isolation"`
	WorkRoot             string                    `yaml:"workRoot"`
	SandboxDir           string                    `yaml:"sandboxDir"`
	Interpreter          string                    `yaml:"interpreter"`
	Env                  []string                  `yaml:"env"`
	BindMounts           []spec.MountSpec          `yaml:"bindMounts"`
	StdoutStderrMaxBytes int64                     `yaml:"stdoutStderrMaxBytes"`
}

// LimitsConfig holds per-run resource ceilings and input/output caps.
type LimitsConfig struct {
	CPUTimeMs      int64 `yaml:"cpuTimeMs"`
	WallTimeMs     int64 `yaml:"wallTimeMs"`
	MemoryMB       int64 `yaml:"memoryMB"`
	StackMB        int64 `yaml:"stackMB"`
	OutputMB       int64 `yaml:"outputMB"`
	PIDs           int64 `yaml:"pids"`
	MaxScriptBytes int64 `yaml:"maxScriptBytes"`
	MaxResultBytes int64 `yaml:"maxResultBytes"`
}

// ValidatorConfig holds static screening settings.
type ValidatorConfig struct {
	ScreenImports bool `yaml:"screenImports"`
}

// AppConfig holds runbox service config.
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Logger    logger.Config   `yaml:"logger"`
	Sandbox   SandboxConfig   `yaml:"sandbox"`
	Limits    LimitsConfig    `yaml:"limits"`
	Validator ValidatorConfig `yaml:"validator"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

func loadAppConfig(path string) (*AppConfig, error) {
	var cfg AppConfig
	if err := loadYAML(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if cfg.Sandbox.WorkRoot == "" {
		return nil, fmt.Errorf("sandbox work root is required")
	}
	if cfg.Sandbox.EnableCgroup && cfg.Sandbox.CgroupRoot == "" {
		return nil, fmt.Errorf("cgroup root is required when cgroup enforcement is enabled")
	}
	if !cfg.Sandbox.EnableNamespaces && cfg.Sandbox.SandboxDir != "" {
		return nil, fmt.Errorf("sandboxDir requires namespaces")
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Sandbox.Interpreter == "" {
		cfg.Sandbox.Interpreter = defaultInterpreter
	}
	if cfg.Sandbox.StdoutStderrMaxBytes <= 0 {
		cfg.Sandbox.StdoutStderrMaxBytes = defaultStreamMaxByte
	}
	if cfg.Limits.CPUTimeMs <= 0 {
		cfg.Limits.CPUTimeMs = defaultCPUTimeMs
	}
	if cfg.Limits.WallTimeMs <= 0 {
		cfg.Limits.WallTimeMs = defaultWallTimeMs
	}
	if cfg.Limits.MemoryMB <= 0 {
		cfg.Limits.MemoryMB = defaultMemoryMB
	}
	if cfg.Limits.StackMB <= 0 {
		cfg.Limits.StackMB = defaultStackMB
	}
	if cfg.Limits.OutputMB <= 0 {
		cfg.Limits.OutputMB = defaultOutputMB
	}
	if cfg.Limits.PIDs <= 0 {
		cfg.Limits.PIDs = defaultPIDs
	}
	if cfg.Limits.MaxScriptBytes <= 0 {
		cfg.Limits.MaxScriptBytes = defaultMaxScript
	}
	if cfg.Limits.MaxResultBytes <= 0 {
		cfg.Limits.MaxResultBytes = defaultMaxResult
	}
}

func (c LimitsConfig) toResourceLimit() spec.ResourceLimit {
	return spec.ResourceLimit{
		CPUTimeMs:  c.CPUTimeMs,
		WallTimeMs: c.WallTimeMs,
		MemoryMB:   c.MemoryMB,
		StackMB:    c.StackMB,
		OutputMB:   c.OutputMB,
		PIDs:       c.PIDs,
	}
}

func (c *AppConfig) toEngineConfig() engine.Config {
	return engine.Config{
		CgroupRoot:           c.Sandbox.CgroupRoot,
		HelperPath:           c.Sandbox.HelperPath,
		Isolation:            c.Sandbox.Isolation,
		StdoutStderrMaxBytes: c.Sandbox.StdoutStderrMaxBytes,
		EnableSeccomp:        c.Sandbox.EnableSeccomp,
		EnableCgroup:         c.Sandbox.EnableCgroup,
		EnableNamespaces:     c.Sandbox.EnableNamespaces,
	}
}

func (c *AppConfig) toPolicy() (executor.Policy, error) {
	interpreter, err := shlex.Split(c.Sandbox.Interpreter)
	if err != nil {
		return executor.Policy{}, fmt.Errorf("parse interpreter command: %w", err)
	}
	if len(interpreter) == 0 {
		return executor.Policy{}, fmt.Errorf("interpreter command is empty")
	}
	return executor.Policy{
		WorkRoot:       c.Sandbox.WorkRoot,
		SandboxDir:     c.Sandbox.SandboxDir,
		Interpreter:    interpreter,
		Env:            c.Sandbox.Env,
		BindMounts:     c.Sandbox.BindMounts,
		Limits:         c.Limits.toResourceLimit(),
		MaxScriptBytes: c.Limits.MaxScriptBytes,
		MaxResultBytes: c.Limits.MaxResultBytes,
		ScreenImports:  c.Validator.ScreenImports,
	}, nil
}

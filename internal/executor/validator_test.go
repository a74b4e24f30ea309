package executor

import (
	"strings"
	"testing"

	"runbox/pkg/errors"
)

func testPolicy() Policy {
	return Policy{
		WorkRoot:       "/tmp",
		Interpreter:    []string{"python3"},
		MaxScriptBytes: 1 << 20,
		ScreenImports:  true,
	}
}

func TestValidateScript_EntryPoint(t *testing.T) {
	cases := []struct {
		name     string
		script   string
		wantCode errors.ErrorCode
	}{
		{
			name:     "plain main",
			script:   "def main():\n    return 1\n",
			wantCode: errors.Success,
		},
		{
			name:     "async main",
			script:   "async def main():\n    return 1\n",
			wantCode: errors.Success,
		},
		{
			name:     "main returning a dict",
			script:   "def main():\n    return {\"a\": 1}\n",
			wantCode: errors.Success,
		},
		{
			name:     "no main at all",
			script:   "def helper():\n    return 1\n",
			wantCode: errors.MissingEntryPoint,
		},
		{
			name:     "main only as method",
			script:   "class A:\n    def main(self):\n        return 1\n",
			wantCode: errors.MissingEntryPoint,
		},
		{
			name:     "main mentioned in comment only",
			script:   "# def main() would go here\nx = 1\n",
			wantCode: errors.MissingEntryPoint,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScript(tt.script, testPolicy())
			if tt.wantCode == errors.Success {
				if err != nil {
					t.Fatalf("expected valid script, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected code %d, got nil", tt.wantCode)
			}
			if err.Code != tt.wantCode {
				t.Fatalf("expected code %d, got %d (%s)", tt.wantCode, err.Code, err.Error())
			}
		})
	}
}

func TestValidateScript_ImportScreening(t *testing.T) {
	cases := []struct {
		name     string
		script   string
		wantCode errors.ErrorCode
	}{
		{
			name:     "allowed imports",
			script:   "import json\nimport numpy\nfrom collections import Counter\n\ndef main():\n    return 1\n",
			wantCode: errors.Success,
		},
		{
			name:     "disallowed import",
			script:   "import socket\n\ndef main():\n    return 1\n",
			wantCode: errors.ForbiddenImport,
		},
		{
			name:     "disallowed from-import module",
			script:   "from ctypes import CDLL\n\ndef main():\n    return 1\n",
			wantCode: errors.ForbiddenImport,
		},
		{
			name:     "dangerous name from allowed module",
			script:   "from os import system\n\ndef main():\n    return 1\n",
			wantCode: errors.ForbiddenImport,
		},
		{
			name:     "indented import inside function",
			script:   "def main():\n    import subprocess\n    return 1\n",
			wantCode: errors.ForbiddenImport,
		},
		{
			name:     "dunder import call",
			script:   "def main():\n    return __import__('os')\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "eval call",
			script:   "def main():\n    return eval('1+1')\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "subprocess attribute use",
			script:   "import time\n\ndef main():\n    subprocess.run(['ls'])\n    return 1\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "class introspection escape",
			script:   "def main():\n    return ().__class__.__bases__\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "open call",
			script:   "def main():\n    open('/etc/passwd')\n    return 1\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "socket send call",
			script:   "def main():\n    s.send(b'x')\n    return 1\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "dns lookup call",
			script:   "def main():\n    return socket.getaddrinfo('h', 80)\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "legacy file builtin",
			script:   "def main():\n    file('/etc/passwd')\n    return 1\n",
			wantCode: errors.ForbiddenConstruct,
		},
		{
			name:     "identifier containing exec is fine",
			script:   "def main():\n    executed = 1\n    return executed\n",
			wantCode: errors.Success,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateScript(tt.script, testPolicy())
			if tt.wantCode == errors.Success {
				if err != nil {
					t.Fatalf("expected valid script, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected code %d, got nil", tt.wantCode)
			}
			if err.Code != tt.wantCode {
				t.Fatalf("expected code %d, got %d (%s)", tt.wantCode, err.Code, err.Error())
			}
		})
	}
}

func TestValidateScript_ScreeningDisabled(t *testing.T) {
	policy := testPolicy()
	policy.ScreenImports = false

	script := "import socket\n\ndef main():\n    return 1\n"
	if err := ValidateScript(script, policy); err != nil {
		t.Fatalf("expected screening to be skipped, got %v", err)
	}
}

func TestValidateScript_SizeCap(t *testing.T) {
	policy := testPolicy()
	policy.MaxScriptBytes = 64

	script := "def main():\n    return 1\n" + strings.Repeat("# padding\n", 20)
	err := ValidateScript(script, policy)
	if err == nil {
		t.Fatal("expected size cap violation")
	}
	if err.Code != errors.ScriptTooLarge {
		t.Fatalf("expected ScriptTooLarge, got %d", err.Code)
	}
}

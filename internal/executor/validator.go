package executor

import (
	"regexp"

	"runbox/pkg/errors"
)

// The validator is a fast-path textual scan performed before any process is
// spawned. It never executes submitted code, and a script that slips past it
// is still caught by the bootstrap harness and the sandbox at runtime.

var entryPointPattern = regexp.MustCompile(`(?m)^(?:async\s+)?def\s+main\s*\(`)

var (
	importPattern     = regexp.MustCompile(`(?m)^\s*import\s+(\w+)`)
	fromImportPattern = regexp.MustCompile(`(?m)^\s*from\s+(\w+)(?:\.\w+)*\s+import\s+(\w+)`)
)

// allowedModules is the importable surface exposed to scripts: the permitted
// stdlib subset plus the designated data/numeric libraries.
var allowedModules = map[string]struct{}{
	"os":          {},
	"pandas":      {},
	"numpy":       {},
	"json":        {},
	"sys":         {},
	"math":        {},
	"random":      {},
	"datetime":    {},
	"collections": {},
	"itertools":   {},
	"functools":   {},
	"time":        {},
}

var dangerousNames = map[string]struct{}{
	"system": {},
	"popen":  {},
	"spawn":  {},
	"fork":   {},
	"kill":   {},
	"exec":   {},
	"eval":   {},
}

var dangerousPatterns = []*regexp.Regexp{
	regexp.MustCompile(`__import__\s*\(`),
	regexp.MustCompile(`\beval\s*\(`),
	regexp.MustCompile(`\bexec\s*\(`),
	regexp.MustCompile(`os\.system\s*\(`),
	regexp.MustCompile(`subprocess\s*\.`),
	regexp.MustCompile(`\bopen\s*\(`),
	regexp.MustCompile(`\bfile\s*\(`),
	regexp.MustCompile(`\.__dict__`),
	regexp.MustCompile(`\.__class__`),
	regexp.MustCompile(`\.__bases__`),
	regexp.MustCompile(`\.__subclasses__`),
	regexp.MustCompile(`\.__globals__`),
	regexp.MustCompile(`\.__builtins__`),
	regexp.MustCompile(`\.connect\s*\(`),
	regexp.MustCompile(`\.bind\s*\(`),
	regexp.MustCompile(`\.listen\s*\(`),
	regexp.MustCompile(`\.accept\s*\(`),
	regexp.MustCompile(`\.send\s*\(`),
	regexp.MustCompile(`\.recv\s*\(`),
	regexp.MustCompile(`\.sendto\s*\(`),
	regexp.MustCompile(`\.recvfrom\s*\(`),
	regexp.MustCompile(`\.getaddrinfo\s*\(`),
	regexp.MustCompile(`\.gethostbyname\s*\(`),
	regexp.MustCompile(`\.gethostbyaddr\s*\(`),
	regexp.MustCompile(`\.getservbyname\s*\(`),
	regexp.MustCompile(`\.getservbyport\s*\(`),
	regexp.MustCompile(`\.socket\s*\(`),
}

// ValidateScript runs the pre-execution checks: size cap, entry-point
// presence, import allow-list and dangerous-construct scan. Returns nil when
// the script may proceed to the sandbox.
func ValidateScript(script string, policy Policy) *errors.Error {
	if policy.MaxScriptBytes > 0 && int64(len(script)) > policy.MaxScriptBytes {
		return errors.Newf(errors.ScriptTooLarge, "script is %d bytes, limit is %d", len(script), policy.MaxScriptBytes)
	}

	if !entryPointPattern.MatchString(script) {
		return errors.New(errors.MissingEntryPoint)
	}

	if !policy.ScreenImports {
		return nil
	}

	for _, match := range importPattern.FindAllStringSubmatch(script, -1) {
		if !moduleAllowed(match[1]) {
			return errors.Newf(errors.ForbiddenImport, "import of %q is not allowed", match[1])
		}
	}
	for _, match := range fromImportPattern.FindAllStringSubmatch(script, -1) {
		if !moduleAllowed(match[1]) {
			return errors.Newf(errors.ForbiddenImport, "import of %q is not allowed", match[1])
		}
		if _, bad := dangerousNames[match[2]]; bad {
			return errors.Newf(errors.ForbiddenImport, "import of %q is not allowed", match[2])
		}
	}

	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(script) {
			return errors.New(errors.ForbiddenConstruct)
		}
	}

	return nil
}

func moduleAllowed(name string) bool {
	if _, bad := dangerousNames[name]; bad {
		return false
	}
	_, ok := allowedModules[name]
	return ok
}

package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 13000-13999: Script execution errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	InternalServerError ErrorCode = 10001
	InvalidParams       ErrorCode = 10002
	NotFound            ErrorCode = 10003
	TooManyRequests     ErrorCode = 10006
	ServiceUnavailable  ErrorCode = 10007
	Timeout             ErrorCode = 10008

	// Validation errors (10300-10399)
	ValidationFailed   ErrorCode = 10300
	RequiredFieldEmpty ErrorCode = 10303

	// ========== Script Execution Errors (13000-13999) ==========

	// Contract violations (13000-13099)
	ContractViolation     ErrorCode = 13000
	MissingEntryPoint     ErrorCode = 13001
	ResultNotSerializable ErrorCode = 13002
	ResultRecordInvalid   ErrorCode = 13003
	ForbiddenImport       ErrorCode = 13004
	ForbiddenConstruct    ErrorCode = 13005
	ScriptTooLarge        ErrorCode = 13006

	// Runtime failures (13100-13199)
	RuntimeFailure ErrorCode = 13100

	// Resource limits (13200-13299)
	TimeLimitExceeded    ErrorCode = 13200
	MemoryLimitExceeded  ErrorCode = 13201
	ProcessLimitExceeded ErrorCode = 13202

	// Sandbox faults (13300-13399)
	SandboxFailure ErrorCode = 13300
)

var errorMessages = map[ErrorCode]string{
	Success:             "Success",
	InternalServerError: "Internal server error",
	InvalidParams:       "Invalid parameters",
	NotFound:            "Resource not found",
	TooManyRequests:     "Too many requests",
	ServiceUnavailable:  "Service unavailable",
	Timeout:             "Request timeout",

	ValidationFailed:   "Validation failed",
	RequiredFieldEmpty: "Required field is empty",

	ContractViolation:     "Script violates the execution contract",
	MissingEntryPoint:     "Script must define a main() function",
	ResultNotSerializable: "Script must return a JSON-representable value",
	ResultRecordInvalid:   "Script did not produce a valid result",
	ForbiddenImport:       "Script imports a module outside the allowed set",
	ForbiddenConstruct:    "Script contains a forbidden construct",
	ScriptTooLarge:        "Script exceeds the maximum allowed size",

	RuntimeFailure: "Script raised an error during execution",

	TimeLimitExceeded:    "Script exceeded the time limit",
	MemoryLimitExceeded:  "Script exceeded the memory limit",
	ProcessLimitExceeded: "Script exceeded the process limit",

	SandboxFailure: "Execution environment failed",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// Kind returns the outcome family name exposed to API clients.
func (c ErrorCode) Kind() string {
	switch {
	case c == Success:
		return "success"
	case c >= 13000 && c < 13100:
		return "contract_violation"
	case c >= 13100 && c < 13200:
		return "runtime_failure"
	case c >= 13200 && c < 13300:
		return "resource_exceeded"
	case c >= 13300 && c < 13400:
		return "sandbox_failure"
	case c == InvalidParams, c >= 10300 && c < 10400:
		return "invalid_request"
	default:
		return "internal_error"
	}
}

// HTTPStatus returns the recommended HTTP status code for the error code
func (c ErrorCode) HTTPStatus() int {
	switch {
	case c == Success:
		return 200
	case c == NotFound:
		return 404
	case c == TooManyRequests:
		return 429
	case c == ServiceUnavailable:
		return 503
	case c >= 13000 && c < 13300: // contract, runtime and limit breaches are the caller's fault
		return 400
	case c >= 10300 && c < 10400: // validation errors
		return 400
	case c == InvalidParams:
		return 400
	default:
		return 500
	}
}

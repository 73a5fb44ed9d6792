package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Argument and state errors raised while building or running a pipeline.
const (
	// ErrCodeInvalidArgument indicates a negative limit/skip count or a malformed source.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeAlreadyConsumed indicates a terminal operation on a spent pipeline.
	ErrCodeAlreadyConsumed ErrorCode = "ALREADY_CONSUMED"
	// ErrCodeInvalidState indicates an upstream or concatenated pipeline was already consumed.
	ErrCodeInvalidState ErrorCode = "INVALID_STATE"
)

// Evaluation errors
const (
	// ErrCodeUnboundedSort indicates a sort was applied to an unbounded source.
	ErrCodeUnboundedSort ErrorCode = "UNBOUNDED_SORT"
	// ErrCodeDuplicateKey indicates two elements produced the same map key.
	ErrCodeDuplicateKey ErrorCode = "DUPLICATE_KEY"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates the loaded configuration failed validation.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

var codeNames = map[ErrorCode]string{
	ErrCodeInvalidArgument: "invalid argument",
	ErrCodeAlreadyConsumed: "already consumed",
	ErrCodeInvalidState:    "invalid state",
	ErrCodeUnboundedSort:   "unbounded sort",
	ErrCodeDuplicateKey:    "duplicate key",
	ErrCodeInvalidConfig:   "invalid config",
}

// String returns a lower-case, human-readable form of the code.
func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return string(c)
}

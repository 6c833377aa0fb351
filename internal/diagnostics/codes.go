package diagnostics

// Error codes surfaced by the compiler core
const (
	// Evaluator/emitter errors (P prefix)
	ErrUnresolvedIdentifier = "P004"
	ErrUnresolvableType     = "P005"
	ErrTypeMismatch         = "P019"
	ErrMissingVariable      = "P051"
	ErrRegisterExhaustion   = "P052"
	ErrInvalidBreakContinue = "P081"
	ErrIntrinsicArity       = "P091"

	// Cast/type errors (C prefix)
	ErrInvalidCast = "C073"

	// Generic fallback: invalid escape sequences, scalar/composite
	// mismatch, unsupported scenarios, missing foreign functions
	ErrGeneric = "X000"
)

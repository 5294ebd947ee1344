package gosymdiff

import "github.com/pkg/errors"

// Sentinel errors. Returned errors wrap these with context; match them with
// errors.Is.
var (
	// ErrUndefinedVariable is returned by evaluation when a variable has no
	// binding.
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrUnsupportedOperator is returned for operator tokens and expression
	// types outside the supported set.
	ErrUnsupportedOperator = errors.New("unsupported operator")

	// ErrUnsupportedFunction is returned for function names outside the
	// supported set.
	ErrUnsupportedFunction = errors.New("unsupported function")

	// ErrMalformedExpression is returned when a serialized expression is
	// structurally invalid.
	ErrMalformedExpression = errors.New("malformed expression")

	// ErrInvalidParams is returned by tool calls whose params are missing or
	// have the wrong shape.
	ErrInvalidParams = errors.New("invalid tool params")

	// ErrUnknownTool is returned for tool names outside Tools().
	ErrUnknownTool = errors.New("unknown tool")

	// ErrPathLimit is returned when an expression would emit more chain-rule
	// pairs than a ToolHandler allows.
	ErrPathLimit = errors.New("derivative path limit exceeded")
)

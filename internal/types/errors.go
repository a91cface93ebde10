package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for Automata operations.
// Structured engine errors (*Error) match one of the kind sentinels via errors.Is.
var (
	// ErrConfiguration indicates a malformed or ambiguous expression shape.
	// Raised at deserialization/build time, before any resolution.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrFormat indicates a literal or resolved value could not be parsed
	// into the domain its position expects.
	ErrFormat = errors.New("invalid format")

	// ErrLookup indicates a required path did not resolve and no default was declared.
	ErrLookup = errors.New("lookup failed")

	// ErrDependency indicates a required host service was unavailable at build time.
	ErrDependency = errors.New("dependency unavailable")

	// ErrCancelled indicates the host cancelled a resolution in flight.
	ErrCancelled = errors.New("resolution cancelled")

	// ErrAutomationNotFound indicates no automation exists for an ID.
	ErrAutomationNotFound = errors.New("automation not found")

	// ErrDefinitionTooLarge indicates a definition exceeds MaxDefinitionSize.
	ErrDefinitionTooLarge = errors.New("definition exceeds maximum size")

	// ErrPayloadTooLarge indicates a trigger payload exceeds MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("payload exceeds maximum size")

	// ErrTooManyVariables indicates a data context exceeds MaxVariables.
	ErrTooManyVariables = errors.New("too many variables")
)

// Kind classifies a structured error.
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindFormat
	KindLookup
	KindDependency
	KindCancelled
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindFormat:
		return "format"
	case KindLookup:
		return "lookup"
	case KindDependency:
		return "dependency"
	case KindCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfiguration:
		return ErrConfiguration
	case KindFormat:
		return ErrFormat
	case KindLookup:
		return ErrLookup
	case KindDependency:
		return ErrDependency
	case KindCancelled:
		return ErrCancelled
	default:
		return nil
	}
}

// Stable, machine-checkable error titles.
const (
	TitleInvalidConfiguration = "InvalidConfiguration"
	TitleInvalidJSON          = "InvalidJson"
	TitleUnknownExpression    = "UnknownExpression"
	TitleAmbiguousExpression  = "AmbiguousExpression"
	TitleMissingProperty      = "MissingProperty"
	TitleUnexpectedProperty   = "UnexpectedProperty"
	TitleIncompatibleType     = "IncompatibleExpressionType"
	TitleInvalidOperandCount  = "InvalidOperandCount"

	TitleInvalidTextFormat      = "InvalidTextFormat"
	TitleInvalidIntegerFormat   = "InvalidIntegerFormat"
	TitleInvalidDecimalFormat   = "InvalidDecimalFormat"
	TitleInvalidBooleanFormat   = "InvalidBooleanFormat"
	TitleInvalidDateFormat      = "InvalidDateFormat"
	TitleInvalidTimeFormat      = "InvalidTimeFormat"
	TitleInvalidDateTimeFormat  = "InvalidDateTimeFormat"
	TitleInvalidIntervalFormat  = "InvalidIntervalFormat"
	TitleInvalidListFormat      = "InvalidListFormat"
	TitleInvalidObjectFormat    = "InvalidObjectFormat"
	TitleInvalidJSONFormat      = "InvalidJsonFormat"
	TitleInvalidPathFormat      = "InvalidPathFormat"
	TitleInvalidPeriodType      = "InvalidPeriodType"
	TitleInvalidIPAddressFormat = "InvalidIpAddressFormat"
	TitleInvalidIPRangeFormat   = "InvalidIpRangeFormat"
	TitleInvalidSubnetMask      = "InvalidSubnetMask"

	TitlePathNotFound = "PathNotFound"

	TitleMissingDependency = "MissingDependency"

	TitleResolutionCancelled = "ResolutionCancelled"
	TitleInternal            = "InternalError"
)

// Error is the structured error surfaced to automation authors.
// Path is the expression path of the failing sub-expression
// (e.g. "/notCondition/condition/integerIsEqualToCondition/integer").
type Error struct {
	Kind    Kind
	Title   string
	Message string
	Field   string // offending property, if any
	Value   any    // offending literal or resolved value, if any
	Path    string
	Err     error // underlying cause, if any
}

// Error renders "<Title> at <Path>: <Message>".
func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s at %s: %s", e.Title, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

// Is matches the kind sentinel so callers can use errors.Is(err, types.ErrFormat).
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// ConfigError creates a configuration error at path.
func ConfigError(path, title, format string, args ...any) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Title:   title,
		Message: fmt.Sprintf(format, args...),
		Path:    path,
	}
}

// FormatError creates a format error for field holding value.
// The message echoes the invalid value.
func FormatError(path, field, title string, value any, expected string) *Error {
	return &Error{
		Kind:    KindFormat,
		Title:   title,
		Message: fmt.Sprintf("%s value %s is not a valid %s", describeField(field), quote(value), expected),
		Field:   field,
		Value:   value,
		Path:    path,
	}
}

// LookupError creates a lookup error for a path that did not resolve.
func LookupError(path, field, objectPath string) *Error {
	return &Error{
		Kind:    KindLookup,
		Title:   TitlePathNotFound,
		Message: fmt.Sprintf("path %q was not found and no valueIfNotFound was declared", objectPath),
		Field:   field,
		Value:   objectPath,
		Path:    path,
	}
}

// DependencyError creates a host/dependency error for a missing service.
func DependencyError(path, service string) *Error {
	return &Error{
		Kind:    KindDependency,
		Title:   TitleMissingDependency,
		Message: fmt.Sprintf("required service %s is not registered", service),
		Value:   service,
		Path:    path,
	}
}

// Cancelled creates a cancellation failure wrapping the context error.
func Cancelled(path string, cause error) *Error {
	return &Error{
		Kind:    KindCancelled,
		Title:   TitleResolutionCancelled,
		Message: "resolution was cancelled before completing",
		Path:    path,
		Err:     cause,
	}
}

// AsError converts err to *Error. Non-structured errors are host faults and
// are reported as dependency-kind internal errors.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{
		Kind:    KindDependency,
		Title:   TitleInternal,
		Message: err.Error(),
		Err:     err,
	}
}

func describeField(field string) string {
	if field == "" {
		return "the"
	}
	return fmt.Sprintf("property %q", field)
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", v)
}

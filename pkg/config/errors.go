package config

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a configuration error.
type ErrorKind int

const (
	// MissingRequiredField means a required key is absent from the document.
	MissingRequiredField ErrorKind = iota + 1
	// InvalidAddress means a value cannot be parsed as a network address.
	InvalidAddress
	// InvalidEnumValue means a value is not one of the recognized enum values.
	InvalidEnumValue
	// InvalidValue covers out-of-range numbers and empty strings.
	InvalidValue
	// MalformedDocument means the input is not structurally a config document.
	MalformedDocument
)

// Sentinel errors matched by errors.Is against a ValidationError of the same kind.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidAddress       = errors.New("invalid address")
	ErrInvalidEnumValue     = errors.New("invalid enum value")
	ErrInvalidValue         = errors.New("invalid value")
	ErrMalformedDocument    = errors.New("malformed document")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MissingRequiredField:
		return ErrMissingRequiredField
	case InvalidAddress:
		return ErrInvalidAddress
	case InvalidEnumValue:
		return ErrInvalidEnumValue
	case InvalidValue:
		return ErrInvalidValue
	case MalformedDocument:
		return ErrMalformedDocument
	default:
		return nil
	}
}

// String returns the taxonomy name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case MissingRequiredField:
		return "MissingRequiredField"
	case InvalidAddress:
		return "InvalidAddress"
	case InvalidEnumValue:
		return "InvalidEnumValue"
	case InvalidValue:
		return "InvalidValue"
	case MalformedDocument:
		return "MalformedDocument"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ValidationError represents a single configuration error with context.
type ValidationError struct {
	Kind    ErrorKind
	Path    string // e.g., "p2p.topics_of_interest.messages" or "p2p.trusted_peers[0]"
	Message string // e.g., "invalid value \"urgent\""
	Hint    string // e.g., "allowed values: low, normal, high"
}

func (e ValidationError) Error() string {
	path := e.Path
	if path == "" {
		path = "<document>"
	}
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", path, e.Message)
}

// Is reports whether target is the sentinel error of e's kind.
func (e ValidationError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func missing(path string) ValidationError {
	return ValidationError{Kind: MissingRequiredField, Path: path, Message: "required field is missing"}
}

func malformed(path, format string, args ...interface{}) ValidationError {
	return ValidationError{Kind: MalformedDocument, Path: path, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first ValidationError in err's chain, or 0.
func KindOf(err error) ErrorKind {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return 0
}

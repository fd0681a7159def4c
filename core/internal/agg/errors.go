package agg

import (
	"strings"
)

type ErrorKind int

const (
	MissingTypeMetadata ErrorKind = iota + 1
	UnsupportedRelationShape
	InvalidDefaultValue
	ResolverFailure
	MaxDepthExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case MissingTypeMetadata:
		return "missing type metadata"
	case UnsupportedRelationShape:
		return "unsupported relation shape"
	case InvalidDefaultValue:
		return "invalid default value"
	case ResolverFailure:
		return "resolver failure"
	case MaxDepthExceeded:
		return "max depth exceeded"
	default:
		return "unknown error"
	}
}

// Error is returned for every failed compile. Type and Field identify where
// compilation stopped, Err holds the underlying cause if any.
type Error struct {
	Kind  ErrorKind
	Type  string
	Field string
	Err   error
}

// Sentinels for errors.Is, they match any Error of the same kind.
var (
	ErrMissingTypeMetadata      = &Error{Kind: MissingTypeMetadata}
	ErrUnsupportedRelationShape = &Error{Kind: UnsupportedRelationShape}
	ErrInvalidDefaultValue      = &Error{Kind: InvalidDefaultValue}
	ErrResolverFailure          = &Error{Kind: ResolverFailure}
	ErrMaxDepthExceeded         = &Error{Kind: MaxDepthExceeded}
)

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("agg: ")
	sb.WriteString(e.Kind.String())
	if e.Type != "" {
		sb.WriteString(" on type '")
		sb.WriteString(e.Type)
		sb.WriteString("'")
	}
	if e.Field != "" {
		sb.WriteString(" field '")
		sb.WriteString(e.Field)
		sb.WriteString("'")
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Type == "" && t.Field == "" && t.Err == nil
}

func newError(kind ErrorKind, typeName, field string, err error) *Error {
	return &Error{Kind: kind, Type: typeName, Field: field, Err: err}
}

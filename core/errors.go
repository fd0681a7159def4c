package core

import (
	"github.com/dosco/lookahead/core/internal/agg"
	"github.com/dosco/lookahead/core/internal/qcode"
)

type (
	// Field is one requested field and its nested selection
	Field = qcode.Field

	// Fields is a selection in request order
	Fields = qcode.Fields

	// Params is the input handed to a ResolverFn
	Params = agg.Params

	// Pagination is the filter, sort, skip and limit a ResolverFn returns
	Pagination = agg.Pagination

	// ResolverFn turns field arguments into a Pagination
	ResolverFn = agg.ResolverFn

	// RootArgs are applied to the root pipeline unchanged
	RootArgs = agg.RootArgs
)

// Error is returned by every failed compile, use errors.Is with the Err*
// values below to check its kind.
type (
	Error     = agg.Error
	ErrorKind = agg.ErrorKind
)

const (
	MissingTypeMetadata      = agg.MissingTypeMetadata
	UnsupportedRelationShape = agg.UnsupportedRelationShape
	InvalidDefaultValue      = agg.InvalidDefaultValue
	ResolverFailure          = agg.ResolverFailure
	MaxDepthExceeded         = agg.MaxDepthExceeded
)

var (
	ErrMissingTypeMetadata      = agg.ErrMissingTypeMetadata
	ErrUnsupportedRelationShape = agg.ErrUnsupportedRelationShape
	ErrInvalidDefaultValue      = agg.ErrInvalidDefaultValue
	ErrResolverFailure          = agg.ErrResolverFailure
	ErrMaxDepthExceeded         = agg.ErrMaxDepthExceeded
)

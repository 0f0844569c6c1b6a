//
// Copyright (c) 2026 Osmose Engineering
//

package implicit

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when an archive is requested for zero layers.
var ErrEmptyInput = errors.New("no layers to encode")

// InvalidParameterError reports a constructor argument that cannot produce
// a well-defined field (degenerate axis, non-positive cell size, ...).
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter '%s': %s", e.Param, e.Reason)
}

func invalidParameter(param, reason string) error {
	return &InvalidParameterError{Param: param, Reason: reason}
}

// MalformedDocumentError reports a document missing required bounds, nodes,
// or fields, or referencing a node id that does not exist.
type MalformedDocumentError string

func (e MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document: %s", string(e))
}

// UnsupportedNodeTypeError carries the offending node type tag.
type UnsupportedNodeTypeError string

func (e UnsupportedNodeTypeError) Error() string {
	return fmt.Sprintf("unsupported node type '%s'", string(e))
}

// CyclicGraphError carries the id of a node that transitively references
// itself.
type CyclicGraphError string

func (e CyclicGraphError) Error() string {
	return fmt.Sprintf("node '%s' is part of a reference cycle", string(e))
}

// SamplingExhaustedError reports a rejection-sampling run that blew its
// trial budget before finding the requested number of points.
type SamplingExhaustedError struct {
	Tries int
	Found int
	Want  int
}

func (e *SamplingExhaustedError) Error() string {
	return fmt.Sprintf("sampling exhausted: found %d of %d points in %d tries", e.Found, e.Want, e.Tries)
}

// MissingAssetError carries the path of a mesh file or slice image that a
// document or raster set declared but that is not present.
type MissingAssetError string

func (e MissingAssetError) Error() string {
	return fmt.Sprintf("missing asset: %s", string(e))
}

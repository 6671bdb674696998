// Package hdf4 presents a tag/reference-addressed scientific container as a
// navigable tree of groups, arrays, images and tables.
package hdf4

import (
	"errors"

	"github.com/zeebo/errs"

	"github.com/robert-malhotra/go-hdf4/backend"
)

// Error classes.
var (
	// Error wraps failures reported by the storage engine.
	Error = errs.Class("hdf4")
	// ValidationError marks requests rejected before reaching the engine.
	ValidationError = errs.Class("hdf4: validation")
)

// Common errors
var (
	ErrNotFound       = backend.ErrNotFound
	ErrNotDataset     = errors.New("object is not a dataset")
	ErrNotGroup       = errors.New("object is not a group")
	ErrUnsupported    = backend.ErrUnsupported
	ErrNotImplemented = errors.New("not implemented")
	ErrInvalidPath    = errors.New("invalid path")
	ErrClosed         = errors.New("file is closed")
	ErrReadOnly       = backend.ErrReadOnly
)

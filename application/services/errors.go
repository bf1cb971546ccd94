package services

import (
	pkgerrors "brainbrowser/pkg/errors"
)

// Errors returned by the tab and view services. Callers at the session
// boundary treat them as logged no-ops.
var (
	ErrUnknownPage  = pkgerrors.NewNotFoundError("page").WithCode("UNKNOWN_PAGE")
	ErrTabNotFound  = pkgerrors.NewNotFoundError("tab").WithCode("TAB_NOT_FOUND")
	ErrNoActiveTab  = pkgerrors.NewNotFoundError("active tab").WithCode("NO_ACTIVE_TAB")
	ErrSamePage     = pkgerrors.NewValidationError("neuron is already the current page").WithCode("SAME_PAGE")
	ErrInvalidURL   = pkgerrors.NewValidationError("url has no host").WithCode("INVALID_URL")
	ErrEmptySurface = pkgerrors.NewValidationError("surface size must be positive").WithCode("EMPTY_SURFACE")
)

package aggregates

import (
	pkgerrors "brainbrowser/pkg/errors"
)

// Sentinel errors returned by graph mutators. Each leaves the graph unchanged.
var (
	ErrNeuronNotFound = pkgerrors.NewNotFoundError("neuron").WithCode("NEURON_NOT_FOUND")
	ErrSelfLoop       = pkgerrors.NewValidationError("cannot connect a neuron to itself").WithCode("SELF_LOOP")
	ErrEmptyPageID    = pkgerrors.NewValidationError("pageID cannot be empty").WithCode("EMPTY_PAGE_ID")
	ErrPageBound      = pkgerrors.NewConflictError("page already has a neuron").WithCode("PAGE_BOUND")
)

package domain

import "errors"

// ErrNodeNotFound is returned by a host when the graph node does not exist (anymore).
var ErrNodeNotFound = errors.New("graph node not found")

// ErrEvaluation is returned by a host when pulling a plug's value fails to evaluate.
var ErrEvaluation = errors.New("plug evaluation failed")

// ErrHost wraps any other failure reported by the host application.
var ErrHost = errors.New("host failure")

// ErrMarkerUnsupported is returned when markers are requested for a plug type that cannot hold positions.
var ErrMarkerUnsupported = errors.New("markers not supported for plug type")

// ErrInconsistentShape is returned when tuples of one port disagree in arity.
var ErrInconsistentShape = errors.New("inconsistent value shape")

// ErrSessionNotFound is returned when a viewer session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNoSelection is returned when a viewer session has no extracted data to act on.
var ErrNoSelection = errors.New("no port data loaded")

// ErrRowOutOfRange is returned when a requested row is past the end of the table.
var ErrRowOutOfRange = errors.New("row out of range")

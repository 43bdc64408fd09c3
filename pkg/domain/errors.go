package domain

import "errors"

// ErrEmptyNodeID is returned when a node or rule operation is given an empty id.
var ErrEmptyNodeID = errors.New("empty node id")

// ErrUnknownTrigger is returned by strict compilation when a DSL key names no known trigger.
var ErrUnknownTrigger = errors.New("unknown trigger")

// ErrUnknownField is returned by strict compilation when an object entry carries an unrecognized field.
var ErrUnknownField = errors.New("unknown field")

// ErrUnknownAction is returned by strict compilation when an explicit action is not recognized.
var ErrUnknownAction = errors.New("unknown action")

// ErrInvalidTiming is returned when a timing value cannot be normalized.
var ErrInvalidTiming = errors.New("invalid timing value")

// ErrSessionNotFound is returned when a session ID has no engine attached.
var ErrSessionNotFound = errors.New("session not found")

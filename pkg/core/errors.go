package core

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures on the lineage read path.
type ErrorKind string

// Error kinds.
const (
	KindUnknownGraph         ErrorKind = "UnknownGraph"
	KindUnknownScope         ErrorKind = "UnknownScope"
	KindUnknownView          ErrorKind = "UnknownView"
	KindVertexNotFound       ErrorKind = "VertexNotFound"
	KindSerializationFailure ErrorKind = "SerializationFailure"
	KindInvalidGraph         ErrorKind = "InvalidGraph"
	KindTraversalLimit       ErrorKind = "TraversalLimit"
	KindCancelled            ErrorKind = "Cancelled"
	KindInternal             ErrorKind = "Internal"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrUnknownGraph         = errors.New("unknown graph")
	ErrUnknownScope         = errors.New("unknown scope")
	ErrUnknownView          = errors.New("unknown view")
	ErrVertexNotFound       = errors.New("vertex not found")
	ErrSerializationFailure = errors.New("serialization failure")
	ErrInvalidGraph         = errors.New("invalid graph")
	ErrTraversalLimit       = errors.New("traversal limit exceeded")
	ErrCancelled            = errors.New("cancelled")
)

var sentinels = map[ErrorKind]error{
	KindUnknownGraph:         ErrUnknownGraph,
	KindUnknownScope:         ErrUnknownScope,
	KindUnknownView:          ErrUnknownView,
	KindVertexNotFound:       ErrVertexNotFound,
	KindSerializationFailure: ErrSerializationFailure,
	KindInvalidGraph:         ErrInvalidGraph,
	KindTraversalLimit:       ErrTraversalLimit,
	KindCancelled:            ErrCancelled,
}

// Error is a typed lineage error.
type Error struct {
	Kind ErrorKind
	// Op names the operation that failed, e.g. "open graph".
	Op  string
	Err error
}

// NewError creates an *Error. err may be nil.
func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if s, ok := sentinels[e.Kind]; ok {
		msg = s.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel error of the same kind.
func (e *Error) Is(target error) bool {
	if s, ok := sentinels[e.Kind]; ok && s == target {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Kind == e.Kind
	}
	return false
}

// KindOf returns the kind of err. Context cancellation maps to KindCancelled,
// anything unclassified to KindInternal, and nil to "".
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	for kind, s := range sentinels {
		if errors.Is(err, s) {
			return kind
		}
	}
	if isContextErr(err) {
		return KindCancelled
	}
	return KindInternal
}

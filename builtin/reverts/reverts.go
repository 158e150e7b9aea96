// Copyright (c) 2026 The Kickoff developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the typed errors that abort a component operation.
// Every kind aborts the whole operation and rolls back its writes.
package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies a revert.
type Kind uint8

const (
	Authorization Kind = iota + 1 // caller lacks the role
	Phase                         // operation not allowed in the current phase
	Validation                    // bad input
	StateConflict                 // already done, reentrant, or run in progress
	External                      // a collaborator failed
)

func (k Kind) String() string {
	switch k {
	case Authorization:
		return "authorization"
	case Phase:
		return "phase"
	case Validation:
		return "validation"
	case StateConflict:
		return "state conflict"
	case External:
		return "external"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

type Error struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *Error {
	return &Error{kind: kind, message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.message
}

func (e *Error) Kind() Kind {
	return e.kind
}

// Is matches errors of the same kind and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.kind == e.kind && t.message == e.message
}

func Unauthorized(message string) *Error { return New(Authorization, message) }
func WrongPhase(message string) *Error   { return New(Phase, message) }
func Invalid(message string) *Error      { return New(Validation, message) }
func Conflict(message string) *Error     { return New(StateConflict, message) }

// Externalf reports a collaborator failure, keeping the cause in the message.
func Externalf(format string, args ...any) *Error {
	return Newf(External, format, args...)
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var re *Error
	return errors.As(e, &re)
}

// KindOf returns the kind of the first revert in err's chain, or 0.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.kind
	}
	return 0
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

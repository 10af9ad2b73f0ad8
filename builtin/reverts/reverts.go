// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Kind classifies why a call was reverted.
type Kind uint8

const (
	// PreconditionViolation is a wrong caller, wrong state or a timing gate that is not met yet.
	PreconditionViolation Kind = iota
	// ResourceExhaustion is a request that can never be served with the current resources.
	ResourceExhaustion
	// ExternalCollaboratorFailure is a rejected value transfer, mint or burn.
	ExternalCollaboratorFailure
)

func (k Kind) String() string {
	switch k {
	case PreconditionViolation:
		return "precondition violation"
	case ResourceExhaustion:
		return "resource exhaustion"
	case ExternalCollaboratorFailure:
		return "external collaborator failure"
	}
	return "unknown"
}

type ErrRevert struct {
	message string
	kind    Kind
	cause   error
}

// New creates a revert error of kind PreconditionViolation.
func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// NewWithKind creates a revert error of the given kind.
func NewWithKind(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		message: message,
		kind:    kind,
	}
}

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

// Message returns the message without the cause.
func (e *ErrRevert) Message() string {
	return e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// Is reports whether target is a revert with the same kind and message,
// so wrapped copies still match their sentinel.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	return e.kind == t.kind && e.message == t.message
}

// Wrap returns a copy of the revert carrying cause.
func (e *ErrRevert) Wrap(cause error) *ErrRevert {
	return &ErrRevert{
		message: e.message,
		kind:    e.kind,
		cause:   cause,
	}
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the first revert in err's chain.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return 0, false
}

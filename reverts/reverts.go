// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package reverts defines the coded errors that abort a ledger operation.
//
// Every failed operation reverts as a whole and surfaces exactly one of
// these codes to the caller; there are no silent no-ops.
package reverts

import (
	"errors"
	"fmt"
)

// Code classifies the cause of a reverted operation.
type Code uint8

const (
	// AccessDenied caller lacks the required role.
	AccessDenied Code = iota + 1
	// AlreadyExists duplicate node/user/task registration.
	AlreadyExists
	// NotFound reference to unknown task/node/user.
	NotFound
	// InvalidAmount zero or out-of-range stake, reward, timeout or slash amount.
	InvalidAmount
	// InvalidSignature credential digest does not recover to an authorized signer.
	InvalidSignature
	// StateConflict operation invalid for the current lifecycle state.
	StateConflict
	// TransferFailure native or token transfer did not succeed.
	TransferFailure
	// Paused the emergency switch blocks state-mutating entry points.
	Paused
	// InsufficientBalance claim exceeds the claimable reward balance.
	InsufficientBalance
)

func (c Code) String() string {
	switch c {
	case AccessDenied:
		return "access denied"
	case AlreadyExists:
		return "already exists"
	case NotFound:
		return "not found"
	case InvalidAmount:
		return "invalid amount"
	case InvalidSignature:
		return "invalid signature"
	case StateConflict:
		return "state conflict"
	case TransferFailure:
		return "transfer failure"
	case Paused:
		return "paused"
	case InsufficientBalance:
		return "insufficient balance"
	}
	return "unknown"
}

// ErrRevert aborts an operation with a code and reason string.
type ErrRevert struct {
	code    Code
	message string
}

// New creates a revert error.
func New(code Code, message string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: message,
	}
}

// Newf creates a revert error with a formatted reason.
func Newf(code Code, format string, args ...interface{}) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: fmt.Sprintf(format, args...),
	}
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.code.String()
	}
	return e.code.String() + ": " + e.message
}

// Code returns the revert code.
func (e *ErrRevert) Code() Code {
	return e.code
}

// IsRevertErr reports whether err is a revert error.
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

// CodeOf extracts the revert code carried by err.
func CodeOf(err error) (Code, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.code, true
	}
	return 0, false
}

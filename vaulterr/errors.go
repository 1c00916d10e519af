// Package vaulterr defines the typed error taxonomy returned across the
// vault core's request/response boundary. Every error is a value: the core
// never panics and never aborts (see the gateway package).
package vaulterr

import (
	"errors"
	"fmt"
)

// Code is the stable numeric identifier surfaced to foreign callers.
type Code int

const (
	CodeInvalidXpub           Code = 1001
	CodeInvalidAddress        Code = 1002
	CodeNetworkMismatch       Code = 1003
	CodePsbtBuildFailed       Code = 2001
	CodeInsufficientFunds     Code = 2002
	CodePolicyViolation       Code = 2003
	CodeDustOutput            Code = 2004
	CodeKeyDerivationFailed   Code = 3001
	CodeMetadataDecodeFailed  Code = 3002
	CodeMetadataEncodeTooLong Code = 3003
	CodeSerializationError    Code = 4001
	CodeInvalidInput          Code = 4002
	CodeAdapterTransient      Code = 5001
	CodeAdapterPermanent      Code = 5002
	CodeCancelled             Code = 5003
)

var kindNames = map[Code]string{
	CodeInvalidXpub:           "InvalidXpub",
	CodeInvalidAddress:        "InvalidAddress",
	CodeNetworkMismatch:       "NetworkMismatch",
	CodePsbtBuildFailed:       "PsbtBuildFailed",
	CodeInsufficientFunds:     "InsufficientFunds",
	CodePolicyViolation:       "PolicyViolation",
	CodeDustOutput:            "DustOutput",
	CodeKeyDerivationFailed:   "KeyDerivationFailed",
	CodeMetadataDecodeFailed:  "MetadataDecodeFailed",
	CodeMetadataEncodeTooLong: "MetadataEncodeTooLong",
	CodeSerializationError:    "SerializationError",
	CodeInvalidInput:          "InvalidInput",
	CodeAdapterTransient:      "AdapterTransient",
	CodeAdapterPermanent:      "AdapterPermanent",
	CodeCancelled:             "Cancelled",
}

// Error is the single error type returned by every core operation. It
// carries the stable code from the error taxonomy plus the original cause,
// so callers can both branch on Code and inspect the chain with errors.Is /
// errors.As / errors.Unwrap.
type Error struct {
	Code    Code
	Kind    string
	Message string
	cause   error

	// Needed and Available are only populated for CodeInsufficientFunds.
	Needed    int64
	Available int64
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Code, e.Message,
			e.cause)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func new(code Code, msg string, cause error) *Error {
	return &Error{
		Code:    code,
		Kind:    kindNames[code],
		Message: msg,
		cause:   cause,
	}
}

func InvalidXpub(msg string, cause error) *Error {
	return new(CodeInvalidXpub, msg, cause)
}

func InvalidAddress(msg string, cause error) *Error {
	return new(CodeInvalidAddress, msg, cause)
}

func NetworkMismatch(msg string, cause error) *Error {
	return new(CodeNetworkMismatch, msg, cause)
}

func PsbtBuildFailed(msg string, cause error) *Error {
	return new(CodePsbtBuildFailed, msg, cause)
}

// InsufficientFunds carries the needed/available sat amounts from the
// error taxonomy so callers don't need to reparse the message.
func InsufficientFunds(needed, available int64) *Error {
	e := new(CodeInsufficientFunds, fmt.Sprintf(
		"need %d sats, have %d sats", needed, available), nil)
	e.Needed = needed
	e.Available = available
	return e
}

func PolicyViolation(msg string) *Error {
	return new(CodePolicyViolation, msg, nil)
}

func DustOutput(msg string) *Error {
	return new(CodeDustOutput, msg, nil)
}

func KeyDerivationFailed(msg string, cause error) *Error {
	return new(CodeKeyDerivationFailed, msg, cause)
}

func MetadataDecodeFailed(msg string, cause error) *Error {
	return new(CodeMetadataDecodeFailed, msg, cause)
}

func MetadataEncodeTooLong(msg string) *Error {
	return new(CodeMetadataEncodeTooLong, msg, nil)
}

func SerializationError(msg string, cause error) *Error {
	return new(CodeSerializationError, msg, cause)
}

func InvalidInput(msg string) *Error {
	return new(CodeInvalidInput, msg, nil)
}

func AdapterTransient(msg string, cause error) *Error {
	return new(CodeAdapterTransient, msg, cause)
}

func AdapterPermanent(msg string, cause error) *Error {
	return new(CodeAdapterPermanent, msg, cause)
}

func Cancelled(msg string) *Error {
	return new(CodeCancelled, msg, nil)
}

// As is a small helper over errors.As for the common case of recovering the
// typed *Error from a generic error return.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies engine errors so the transport layer can map them to
// responses without string matching.
type ErrorKind string

const (
	ErrKindNotFound          ErrorKind = "NotFound"
	ErrKindConflict          ErrorKind = "Conflict"
	ErrKindForbidden         ErrorKind = "Forbidden"
	ErrKindValidationFailed  ErrorKind = "ValidationFailed"
	ErrKindSettlementFailure ErrorKind = "SettlementFailure"
	ErrKindUpstream          ErrorKind = "UpstreamUnavailable"
)

// AppError is a typed engine error. Guards detect these before any write.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewNotFound(msg string) *AppError  { return &AppError{Kind: ErrKindNotFound, Message: msg} }
func NewConflict(msg string) *AppError  { return &AppError{Kind: ErrKindConflict, Message: msg} }
func NewForbidden(msg string) *AppError { return &AppError{Kind: ErrKindForbidden, Message: msg} }
func NewValidation(msg string) *AppError {
	return &AppError{Kind: ErrKindValidationFailed, Message: msg}
}

func NewSettlementFailure(msg string, err error) *AppError {
	return &AppError{Kind: ErrKindSettlementFailure, Message: msg, Err: err}
}

func NewUpstream(msg string, err error) *AppError {
	return &AppError{Kind: ErrKindUpstream, Message: msg, Err: err}
}

// KindOf extracts the error kind, defaulting to SettlementFailure for
// unexpected persistence errors surfaced mid-transition and to a generic
// internal classification otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return "", false
}

package domain

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	CodeUnavailable     ErrorCode = "UNAVAILABLE"
	CodeFailedPrecond   ErrorCode = "FAILED_PRECONDITION"
	CodeInternal        ErrorCode = "INTERNAL"
	CodeCanceled        ErrorCode = "CANCELED"
)

var (
	ErrInvalidVersionFormat   = errors.New("invalid version format")
	ErrConfigurationMalformed = errors.New("configuration malformed")
	ErrDuplicateIdentifier    = errors.New("duplicate identifier")
	ErrSourceUnreachable      = errors.New("update site unreachable")
	ErrInstallFailure         = errors.New("plugin install failed")
	ErrStoreClosed            = errors.New("state store is closed")
)

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error
	Meta    map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:    existing.Code,
			Op:      op,
			Message: existing.Message,
			Cause:   existing.Cause,
			Meta:    existing.Meta,
		}
	}
	return E(code, op, "", err)
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, ErrInvalidVersionFormat), errors.Is(err, ErrConfigurationMalformed), errors.Is(err, ErrDuplicateIdentifier):
		return CodeInvalidArgument, true
	case errors.Is(err, ErrSourceUnreachable):
		return CodeUnavailable, true
	case errors.Is(err, ErrInstallFailure):
		return CodeFailedPrecond, true
	case errors.Is(err, ErrStoreClosed):
		return CodeFailedPrecond, true
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return CodeCanceled, true
	default:
		return "", false
	}
}

// Malformed builds an ErrConfigurationMalformed error for op.
func Malformed(op, msg string) *Error {
	return E(CodeInvalidArgument, op, msg, ErrConfigurationMalformed)
}

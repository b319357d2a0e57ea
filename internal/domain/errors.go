package domain

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeTransient       Code = "TRANSIENT"
	CodeService         Code = "SERVICE"
	CodeStorage         Code = "STORAGE"
	CodeValidation      Code = "VALIDATION"
)

type Metadata struct {
	// Retryable errors may succeed if the same call is issued again.
	Retryable bool
	// Fatal errors should be surfaced to the shopper; non-fatal ones are
	// logged and swallowed.
	Fatal bool
}

var metadataByCode = map[Code]Metadata{
	CodeUnauthenticated: {Retryable: false, Fatal: true},
	CodeTransient:       {Retryable: true, Fatal: false},
	CodeService:         {Retryable: false, Fatal: true},
	CodeStorage:         {Retryable: false, Fatal: false},
	CodeValidation:      {Retryable: false, Fatal: true},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeService]
}

var (
	ErrNotAuthenticated = New(CodeUnauthenticated, "not authenticated")
	ErrQuantityLimit    = New(CodeValidation, fmt.Sprintf("maximum quantity is %d", MaxQuantity))
	ErrProductNotFound  = New(CodeService, "product not found")
	ErrLineNotFound     = New(CodeService, "cart line not found")
)

type Error struct {
	code    Code
	message string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeService
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Is matches sentinel errors by code and message so that wrapped copies of
// ErrNotAuthenticated and friends still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !stdErrors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.code == t.code && e.message == t.message
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf reports the taxonomy code of err. Unclassified errors count as
// service errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeService
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return MetadataFor(CodeOf(err)).Retryable
}

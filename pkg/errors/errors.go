package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	CodeValidation  Code = "VALIDATION_ERROR"
	CodeNotFound    Code = "NOT_FOUND"
	CodeDuplicate   Code = "DUPLICATE"
	CodeIntegrity   Code = "INTEGRITY_ERROR"
	CodeTransaction Code = "TRANSACTION_ERROR"
	CodeSchema      Code = "SCHEMA_ERROR"
	CodeInternal    Code = "INTERNAL_ERROR"
)

type Metadata struct {
	// Fatal marks errors the process must not continue past (schema drift).
	Fatal          bool
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeNotFound: {
		Retryable:      false,
		PublicMessage:  "record not found",
		DetailsAllowed: true,
	},
	CodeDuplicate: {
		Retryable:      false,
		PublicMessage:  "duplicate value",
		DetailsAllowed: true,
	},
	CodeIntegrity: {
		Retryable:      false,
		PublicMessage:  "operation would violate ledger integrity",
		DetailsAllowed: true,
	},
	CodeTransaction: {
		Retryable:      true,
		PublicMessage:  "transaction failed, no changes were applied",
		DetailsAllowed: false,
	},
	CodeSchema: {
		Fatal:          true,
		Retryable:      false,
		PublicMessage:  "schema migration failed",
		DetailsAllowed: false,
	},
	CodeInternal: {
		Retryable:      true,
		PublicMessage:  "internal error",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	details any
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
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
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

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

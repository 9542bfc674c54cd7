// Package errors provides structured error handling with i18n support.
package errors

import (
	"errors"

	"github.com/louisbranch/dmassist/internal/platform/errors/i18n"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Dice errors
	CodeDiceInvalidDie        Code = i18n.CodeDiceInvalidDie
	CodeDiceInvalidParameters Code = i18n.CodeDiceInvalidParameters
	CodeDiceInvalidNotation   Code = i18n.CodeDiceInvalidNotation

	// Equation errors
	CodeEquationBad     Code = i18n.CodeEquationBad
	CodeVariableUnknown Code = i18n.CodeVariableUnknown

	// Macro errors
	CodeScriptFailed Code = i18n.CodeScriptFailed
)

// GetCode extracts the Code from an error chain, or CodeUnknown.
func GetCode(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeUnknown
}

// As finds the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}

// UserMessage renders a localized message for any error. Errors without a
// code render the generic unknown-error text.
func UserMessage(err error, locale string) string {
	if domainErr, ok := As(err); ok {
		return domainErr.LocalizedMessage(locale)
	}
	return i18n.GetCatalog(locale).Format(string(CodeUnknown), nil)
}

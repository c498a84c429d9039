package combat

import (
	"errors"
	"fmt"
)

// ErrorCode tags a failed action for the caller. The empty code means success.
type ErrorCode string

const (
	CodeNone ErrorCode = ""

	CodeMatchNotFound         ErrorCode = "MatchNotFound"
	CodeMatchNotActive        ErrorCode = "MatchNotActive"
	CodeActionBudgetExhausted ErrorCode = "ActionBudgetExhausted"

	CodeAttackerNotFound    ErrorCode = "AttackerNotFound"
	CodeTargetNotFound      ErrorCode = "TargetNotFound"
	CodeParticipantNotFound ErrorCode = "ParticipantNotFound"

	CodeOutOfBounds        ErrorCode = "OutOfBounds"
	CodeTileOccupied       ErrorCode = "TileOccupied"
	CodeTileImpassable     ErrorCode = "TileImpassable"
	CodeOutOfRange         ErrorCode = "OutOfRange"
	CodeTargetOutOfRange   ErrorCode = "TargetOutOfRange"
	CodeTargetCellRequired ErrorCode = "TargetCellRequired"

	CodeInsufficientResource  ErrorCode = "InsufficientResource"
	CodeTargetAlreadyDefeated ErrorCode = "TargetAlreadyDefeated"

	CodeUnknownSkillType ErrorCode = "UnknownSkillType"

	// CodeInternal tags an error that did not originate from action validation.
	CodeInternal ErrorCode = "Internal"
)

// ActionError is the typed failure of an action or a match operation.
// It matches the sentinel with the same Code under errors.Is; a
// TargetOutOfRange error also matches ErrOutOfRange.
type ActionError struct {
	Code ErrorCode
	Msg  string
}

// Error returns "Code" or "Code: message".
func (e *ActionError) Error() string {
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

// Is reports whether target is an ActionError with the same code.
func (e *ActionError) Is(target error) bool {
	t, ok := target.(*ActionError)
	if !ok {
		return false
	}
	if t.Code == e.Code {
		return true
	}
	return e.Code == CodeTargetOutOfRange && t.Code == CodeOutOfRange
}

// Sentinels for errors.Is comparisons.
var (
	ErrMatchNotFound         = &ActionError{Code: CodeMatchNotFound}
	ErrMatchNotActive        = &ActionError{Code: CodeMatchNotActive}
	ErrActionBudgetExhausted = &ActionError{Code: CodeActionBudgetExhausted}
	ErrAttackerNotFound      = &ActionError{Code: CodeAttackerNotFound}
	ErrTargetNotFound        = &ActionError{Code: CodeTargetNotFound}
	ErrParticipantNotFound   = &ActionError{Code: CodeParticipantNotFound}
	ErrOutOfBounds           = &ActionError{Code: CodeOutOfBounds}
	ErrTileOccupied          = &ActionError{Code: CodeTileOccupied}
	ErrTileImpassable        = &ActionError{Code: CodeTileImpassable}
	ErrOutOfRange            = &ActionError{Code: CodeOutOfRange}
	ErrTargetOutOfRange      = &ActionError{Code: CodeTargetOutOfRange}
	ErrTargetCellRequired    = &ActionError{Code: CodeTargetCellRequired}
	ErrInsufficientResource  = &ActionError{Code: CodeInsufficientResource}
	ErrTargetAlreadyDefeated = &ActionError{Code: CodeTargetAlreadyDefeated}
	ErrUnknownSkillType      = &ActionError{Code: CodeUnknownSkillType}
)

func fail(code ErrorCode, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the ErrorCode carried by err.
//
// Postcondition: Returns CodeNone for nil, the ActionError code when err wraps one,
// and CodeInternal otherwise.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeNone
	}
	var ae *ActionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeInternal
}

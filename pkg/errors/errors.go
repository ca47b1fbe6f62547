package errors

import (
	"errors"
	"fmt"
)

// Domain error kinds
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("operation not valid for current state")
	ErrOverpayment  = errors.New("payment exceeds installment schedule")
	ErrPersistence  = errors.New("persistence failure")
)

// DomainError represents a typed business error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeApplicationNotFound = "APPLICATION_NOT_FOUND"
	ErrCodePlanNotFound        = "PLAN_NOT_FOUND"
	ErrCodeSchoolNotFound      = "SCHOOL_NOT_FOUND"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeOverpayment         = "OVERPAYMENT"
	ErrCodePersistence         = "PERSISTENCE_ERROR"
)

// Wrap common errors with business context
func WrapValidation(message string) *DomainError {
	return NewDomainError(ErrCodeValidation, message, ErrValidation)
}

func WrapApplicationNotFound(applicationID string) *DomainError {
	return NewDomainError(
		ErrCodeApplicationNotFound,
		fmt.Sprintf("Application with ID %s not found", applicationID),
		ErrNotFound,
	)
}

func WrapPlanNotFound(planID string) *DomainError {
	return NewDomainError(
		ErrCodePlanNotFound,
		fmt.Sprintf("Plan with ID %s not found", planID),
		ErrNotFound,
	)
}

func WrapSchoolNotFound(schoolID string) *DomainError {
	return NewDomainError(
		ErrCodeSchoolNotFound,
		fmt.Sprintf("School with ID %s not found", schoolID),
		ErrNotFound,
	)
}

func WrapUserNotFound(userID string) *DomainError {
	return NewDomainError(
		ErrCodeUserNotFound,
		fmt.Sprintf("User with ID %s not found", userID),
		ErrNotFound,
	)
}

func WrapInvalidState(message string) *DomainError {
	return NewDomainError(ErrCodeInvalidState, message, ErrInvalidState)
}

func WrapOverpayment(planID string) *DomainError {
	return NewDomainError(
		ErrCodeOverpayment,
		fmt.Sprintf("Plan with ID %s has no remaining installments", planID),
		ErrOverpayment,
	)
}

func WrapPersistence(err error) *DomainError {
	return NewDomainError(ErrCodePersistence, "storage operation failed", errors.Join(ErrPersistence, err))
}

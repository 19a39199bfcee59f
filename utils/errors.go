package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error codes carried in API responses.
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeConflict   = "conflict"
	CodePolicy     = "policy_violation"
	CodeInternal   = "internal_error"
)

// ValidationError reports a malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", CodeValidation, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", CodeValidation, e.Field, e.Message)
}

func NewValidationError(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// NotFoundError reports a missing referenced entity.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s %q", CodeNotFound, e.Resource, e.ID)
}

func NewNotFoundError(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictRef identifies one entity that collides with a request.
type ConflictRef struct {
	Kind      string    `json:"kind"`
	ID        string    `json:"id"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
}

// ConflictError reports an overlap or a uniqueness violation.
type ConflictError struct {
	Message   string
	Conflicts []ConflictRef
}

func (e *ConflictError) Error() string {
	if len(e.Conflicts) == 0 {
		return fmt.Sprintf("%s: %s", CodeConflict, e.Message)
	}
	ids := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		ids = append(ids, c.Kind+":"+c.ID)
	}
	return fmt.Sprintf("%s: %s [%s]", CodeConflict, e.Message, strings.Join(ids, ", "))
}

func NewConflictError(msg string, conflicts ...ConflictRef) error {
	return &ConflictError{Message: msg, Conflicts: conflicts}
}

// PolicyViolationError reports a well-formed request that breaks a business rule.
type PolicyViolationError struct {
	Rule    string
	Limit   string
	Message string
}

func (e *PolicyViolationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", CodePolicy, e.Rule, e.Message)
}

func NewPolicyError(rule, limit, msg string) error {
	return &PolicyViolationError{Rule: rule, Limit: limit, Message: msg}
}

func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

func IsPolicyViolation(err error) bool {
	var e *PolicyViolationError
	return errors.As(err, &e)
}

package domain

import "errors"

var (
	ErrOrderNotFound     = errors.New("order not found or deleted")
	ErrOrderCodeTaken    = errors.New("order code already exists")
	ErrOrderCodeRequired = errors.New("order code required")
	ErrSubjectsRequired  = errors.New("at least one subject required")
	ErrStaffRequired     = errors.New("staff identity required")
	ErrTeacherRequired   = errors.New("resolving teacher required")
	ErrEmptyUpdate       = errors.New("no fields to update")
	ErrInvalidID         = errors.New("invalid id")
)

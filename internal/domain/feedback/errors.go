package feedback

import "errors"

var (
	ErrInvalidPeriod     = errors.New("period must be one of 7days, 30days, 90days, all")
	ErrInvalidResolution = errors.New("problem_resolved must be one of sim, parcialmente, nao")
	ErrDuplicateFeedback = errors.New("feedback already registered for this attendance")
	ErrFeedbackNotFound  = errors.New("feedback not found")
)

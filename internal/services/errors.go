package services

import (
	"errors"
	"fmt"
)

var (
	ErrPlanUnavailable = errors.New("ai docs plan unavailable")
	ErrRunInProgress   = errors.New("another ai docs run holds the lock")
)

// StepError wraps a use-case failure with where it happened.
type StepError struct {
	Step    string
	Path    string
	Profile string
	Err     error
}

func (e *StepError) Error() string {
	msg := e.Step
	if e.Path != "" {
		msg += " [" + e.Path + "]"
	}
	if e.Profile != "" {
		msg += fmt.Sprintf(" (profile %s)", e.Profile)
	}
	return msg + ": " + e.Err.Error()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func stepErr(step, path, profile string, err error) error {
	if err == nil {
		return nil
	}
	var se *StepError
	if errors.As(err, &se) && se.Step == step {
		return err
	}
	return &StepError{Step: step, Path: path, Profile: profile, Err: err}
}

package models

import "github.com/pkg/errors"

// Status is the lifecycle state of a project.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusFunded    Status = "funded"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Stage is the maturity of the business behind a project.
type Stage string

const (
	StageIdea    Stage = "idea"
	StageMVP     Stage = "mvp"
	StageGrowth  Stage = "growth"
	StageScaling Stage = "scaling"
)

// ErrInvalidTransition is returned when a status change would move a
// project backwards or skip the analysis step.
var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[Status][]Status{
	StatusDraft:  {StatusActive},
	StatusActive: {StatusFunded, StatusCompleted, StatusCancelled},
	StatusFunded: {StatusCompleted, StatusCancelled},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusFunded, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a project in status s may move to next.
// Staying in the same status is always allowed.
func (s Status) CanTransitionTo(next Status) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageIdea, StageMVP, StageGrowth, StageScaling:
		return true
	}
	return false
}

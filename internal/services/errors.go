package services

import "github.com/pkg/errors"

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrInvalidProject     = errors.New("invalid project")
	ErrEmptyIdea          = errors.New("business idea is empty")
	ErrDurableUnavailable = errors.New("durable store unavailable")
	ErrNotAnalyzed        = errors.New("project has not been analyzed")
	ErrExportUnavailable  = errors.New("plan export is not configured")
)

package service

import "errors"

var (
	// Project errors
	ErrProjectNotFound = errors.New("project not found")
	ErrFileNotFound    = errors.New("file not found in project")

	// Edit errors
	ErrEditInProgress = errors.New("an edit is already running for this project")

	// Model gateway errors
	ErrAgentNotReady = errors.New("agent is not ready")
)

package cli

import "errors"

// Common CLI errors
var (
	ErrNoTemplate     = errors.New("no mapping template for control type")
	ErrInvalidControl = errors.New("invalid control properties")
	ErrProblems       = errors.New("mapping files have errors")
	ErrConfigExists   = errors.New("config file already exists - use --force to overwrite")
)

package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound   = errors.New("player not found")
	ErrPlayerExists     = errors.New("player already exists")
	ErrAlreadyConnected = errors.New("player is already connected")

	// Team errors
	ErrTeamNotFound  = errors.New("team not found")
	ErrTeamExists    = errors.New("team already exists")
	ErrAlreadyOnTeam = errors.New("player is already on a team")
	ErrNotAMember    = errors.New("player is not a member of this team")
)

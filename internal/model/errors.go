package model

import (
	"errors"
	"fmt"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrOversize        = errors.New("session file exceeds size limit")
	ErrCorrupt         = errors.New("session file could not be parsed")
	ErrNoUserMessages  = errors.New("session has no user messages")
)

// Skip records why a session was left out of a listing.
type Skip struct {
	Source Source
	ID     string
	Path   string
	Err    error
}

func (s Skip) Error() string {
	return fmt.Sprintf("%s %s (%s): %v", s.Source, s.ID, s.Path, s.Err)
}

func (s Skip) Unwrap() error {
	return s.Err
}

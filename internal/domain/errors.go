package domain

import "errors"

var (
	// ErrSessionNotFound is returned when no live session matches a game code.
	ErrSessionNotFound = errors.New("game not found")
	// ErrSessionAlreadyStarted is returned for joins after the game left the lobby.
	ErrSessionAlreadyStarted = errors.New("game already started")
	// ErrNameTaken is returned when a joining player's name is already in use.
	ErrNameTaken = errors.New("player name already taken")
	// ErrNoPlayers is returned when starting a game with an empty lobby.
	ErrNoPlayers = errors.New("no players in game")
	// ErrParticipantNotFound is returned when an unindexed connection acts as a player.
	ErrParticipantNotFound = errors.New("participant not found in game")
	// ErrNoActiveQuestion is returned for answers or advances outside the playing state.
	ErrNoActiveQuestion = errors.New("no active question")
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
)

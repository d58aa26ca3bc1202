package app

import "live-quiz-service/internal/domain"

// Inbound event names (connection -> server).
const (
	EventJoinGame     = "join-game"
	EventAdminJoin    = "admin-join"
	EventStartGame    = "start-game"
	EventAnswer       = "answer"
	EventNextQuestion = "next-question"
)

// Outbound event names (server -> connection(s)).
const (
	EventJoinedGame   = "joined-game"
	EventPlayerJoined = "player-joined"
	EventPlayerLeft   = "player-left"
	EventGameStarted  = "game-started"
	EventQuestion     = "question"
	EventAnswerResult = "answer-result"
	EventGameEnded    = "game-ended"
	EventError        = "error"
)

// JoinedGamePayload confirms a join to the caller only.
type JoinedGamePayload struct {
	GameCode   string `json:"gameCode"`
	PlayerName string `json:"playerName"`
}

// PlayerJoinedPayload is broadcast to the session group on each join.
type PlayerJoinedPayload struct {
	Player       domain.Participant `json:"player"`
	TotalPlayers int                `json:"totalPlayers"`
}

// PlayerLeftPayload is broadcast when a participant disconnects.
type PlayerLeftPayload struct {
	PlayerName   string `json:"playerName"`
	TotalPlayers int    `json:"totalPlayers"`
}

// GameEndedPayload carries the final top-5 leaderboard.
type GameEndedPayload struct {
	Leaderboard []domain.LeaderboardEntry `json:"leaderboard"`
}

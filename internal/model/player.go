package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// MaxNameLength is the longest player name accepted, in runes
const MaxNameLength = 50

// Player is a persisted player record with their game statistics
type Player struct {
	ID         PlayerID
	Name       string // unique, trimmed, non-empty
	Wins       int
	Losses     int
	Ties       int
	TotalGames int
	CreatedAt  int64 // epoch milliseconds, set once at creation
}

// NewPlayer returns a player with zeroed counters
func NewPlayer(id PlayerID, name string, createdAt time.Time) *Player {
	return &Player{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt.UnixMilli(),
	}
}

// Created returns the creation timestamp as a time.Time
func (p *Player) Created() time.Time {
	return time.UnixMilli(p.CreatedAt)
}

// StatsConsistent reports whether the counters satisfy
// TotalGames == Wins + Losses + Ties with no negative values
func (p *Player) StatsConsistent() bool {
	if p.Wins < 0 || p.Losses < 0 || p.Ties < 0 || p.TotalGames < 0 {
		return false
	}
	return p.TotalGames == p.Wins+p.Losses+p.Ties
}

// Apply increments the counter for the given result and the total.
// The caller is responsible for validating the result first.
func (p *Player) Apply(result GameResult) {
	switch result {
	case ResultWin:
		p.Wins++
	case ResultLoss:
		p.Losses++
	case ResultTie:
		p.Ties++
	default:
		return
	}
	p.TotalGames++
}

// Clone returns a copy that shares no state with p
func (p *Player) Clone() *Player {
	cp := *p
	return &cp
}

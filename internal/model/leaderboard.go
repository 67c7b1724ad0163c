package model

// LeaderboardEntry is a ranked player with a formatted win rate
type LeaderboardEntry struct {
	Rank    int
	Player  Player
	WinRate string // percentage with one decimal place, "0.0" when no games played
}

// RanksBefore reports whether a ranks ahead of b on the leaderboard:
// more wins first, then fewer total games, then earlier creation, then id.
func RanksBefore(a, b *Player) bool {
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	if a.TotalGames != b.TotalGames {
		return a.TotalGames < b.TotalGames
	}
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}

// NewerThan reports whether a sorts before b in the most-recent-first player listing
func NewerThan(a, b *Player) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.ID < b.ID
}

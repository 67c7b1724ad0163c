package model

// GameResult is the outcome of a finished game from the reporting player's view
type GameResult string

const (
	ResultWin  GameResult = "win"
	ResultLoss GameResult = "loss"
	ResultTie  GameResult = "tie"
)

// ParseGameResult validates a raw result string
func ParseGameResult(s string) (GameResult, error) {
	r := GameResult(s)
	if !r.Valid() {
		return "", ErrInvalidResult
	}
	return r, nil
}

// Valid returns true for win, loss and tie
func (r GameResult) Valid() bool {
	switch r {
	case ResultWin, ResultLoss, ResultTie:
		return true
	}
	return false
}

// Column returns the counter column incremented for this result
func (r GameResult) Column() string {
	switch r {
	case ResultWin:
		return "wins"
	case ResultLoss:
		return "losses"
	case ResultTie:
		return "ties"
	}
	return ""
}

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/oxgrid/tictactoe/internal/api/response"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/stats"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w, errW io.Writer) *Output {
	return &Output{format: format, w: w, errW: errW}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{"success": false, "error": err.Error()})
		fmt.Fprintln(o.errW, string(data))
	} else {
		fmt.Fprintf(o.errW, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case *response.Player:
		o.printPlayer(*v)
	case response.Player:
		o.printPlayer(v)
	case []response.Player:
		o.printPlayers(v)
	case *response.StatsResponse:
		fmt.Fprintln(o.w, v.Message)
		o.printPlayer(v.Player)
	case []response.LeaderboardEntry:
		o.printLeaderboard(v)
	case *response.HealthResponse:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printPlayer(p response.Player) {
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.Name, p.ID)
	fmt.Fprintf(o.w, "Wins: %d | Losses: %d | Ties: %d | Total: %d\n", p.Wins, p.Losses, p.Ties, p.TotalGames)
	fmt.Fprintf(o.w, "Win rate: %s%%\n", stats.WinRate(p.ToModel()))
}

func (o *Output) printPlayers(players []response.Player) {
	if len(players) == 0 {
		fmt.Fprintln(o.w, "No players yet.")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tWINS\tLOSSES\tTIES\tTOTAL")
	for _, p := range players {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\n", p.ID, p.Name, p.Wins, p.Losses, p.Ties, p.TotalGames)
	}
	_ = tw.Flush()
}

func (o *Output) printLeaderboard(entries []response.LeaderboardEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(o.w, "No players yet. Be the first to play!")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tWINS\tLOSSES\tTIES\tTOTAL\tWIN RATE")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\t%d\t%s%%\n",
			e.Rank, e.Name, e.Wins, e.Losses, e.Ties, e.TotalGames, e.WinRate)
	}
	_ = tw.Flush()
}

// PrintBoard draws the grid with cell numbers 1-9 in empty squares
func (o *Output) PrintBoard(g model.GameState) {
	var sb strings.Builder
	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}
		for col := 0; col < 3; col++ {
			pos := row*3 + col
			if col > 0 {
				sb.WriteString("|")
			}
			mark := string(g.Board[pos])
			if mark == "" {
				mark = fmt.Sprint(pos + 1)
			}
			sb.WriteString(" " + mark + " ")
		}
		sb.WriteString("\n")
	}
	fmt.Fprint(o.w, sb.String())
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/oxgrid/tictactoe/internal/dependencies/random"
	"github.com/oxgrid/tictactoe/internal/model"
	"github.com/oxgrid/tictactoe/internal/services/bot"
	"github.com/oxgrid/tictactoe/internal/services/engine"
	"github.com/oxgrid/tictactoe/internal/services/session"
	"github.com/oxgrid/tictactoe/internal/services/stats"
	"github.com/oxgrid/tictactoe/internal/web/middleware"
	"github.com/oxgrid/tictactoe/internal/web/templates/components"
	"github.com/oxgrid/tictactoe/internal/web/templates/pages"
)

const maxFormBytes = 4 << 10

var errBadGameForm = errors.New("bad game form")

// PlayHandler handles player setup and the game itself.
// The board travels in hidden form fields so the server keeps no game state;
// each request rebuilds a session, applies one step and renders the result.
type PlayHandler struct {
	stats         *stats.Service
	random        random.Random
	logger        *slog.Logger
	secureCookies bool
}

// NewPlayHandler creates a new PlayHandler
func NewPlayHandler(statsService *stats.Service, rnd random.Random, logger *slog.Logger, secureCookies bool) *PlayHandler {
	return &PlayHandler{
		stats:         statsService,
		random:        rnd,
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// Home renders the setup form, or a fresh game once a player is known
func (h *PlayHandler) Home(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	if player == nil {
		render(w, r, http.StatusOK, pages.Setup(pages.SetupData{PageData: pageData(r, "Welcome")}))
		return
	}

	opponent := r.URL.Query().Get("opponent")
	if _, err := h.opponent(opponent); err != nil {
		RenderError(w, r, http.StatusBadRequest, "Unknown opponent "+strconv.Quote(opponent)+".")
		return
	}

	h.renderGame(w, r, http.StatusOK, components.GameView{
		Game:     engine.CreateInitialGameState(),
		Sync:     session.StatePlaying,
		Opponent: opponent,
	}, "")
}

// Setup handles POST /play/setup
func (h *PlayHandler) Setup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	name := r.PostFormValue("name")

	player, err := h.stats.CreatePlayer(r.Context(), name)
	if err != nil {
		message, ok := setupMessage(err)
		if !ok {
			h.logger.Error("creating player failed", "error", err)
			RenderError(w, r, http.StatusInternalServerError, "Could not create your player. Please try again.")
			return
		}
		render(w, r, http.StatusBadRequest, pages.Setup(pages.SetupData{
			PageData: pageData(r, "Welcome"),
			Name:     name,
			Error:    message,
		}))
		return
	}

	middleware.SetPlayerCookie(w, player.ID, h.secureCookies)
	middleware.SetFlash(w, "success", "Player created. Good luck, "+player.Name+"!")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Move handles POST /play/move: one move by the player, answered by the
// computer when playing against it. A finished game is reported at once.
func (h *PlayHandler) Move(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	if player == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess, opponent, err := h.resume(w, r, player)
	if err != nil {
		RenderError(w, r, http.StatusBadRequest, "That game could not be read. Start a new game.")
		return
	}

	pos, err := strconv.Atoi(r.PostFormValue("pos"))
	if err != nil {
		pos = -1
	}

	status, message := http.StatusOK, ""
	if err := sess.Move(pos); err != nil {
		status, message = http.StatusUnprocessableEntity, moveMessage(err)
	} else {
		h.report(r.Context(), sess)
	}

	r = r.WithContext(middleware.WithPlayer(r.Context(), sess.Player()))
	h.renderGame(w, r, status, components.GameView{
		Game:     sess.Game(),
		Sync:     sess.State(),
		Opponent: opponent,
	}, message)
}

// Sync handles POST /play/sync, reporting a finished game whose earlier
// report failed
func (h *PlayHandler) Sync(w http.ResponseWriter, r *http.Request) {
	player := middleware.GetPlayer(r.Context())
	if player == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	sess, opponent, err := h.resume(w, r, player)
	if err != nil {
		RenderError(w, r, http.StatusBadRequest, "That game could not be read. Start a new game.")
		return
	}

	h.report(r.Context(), sess)

	r = r.WithContext(middleware.WithPlayer(r.Context(), sess.Player()))
	h.renderGame(w, r, http.StatusOK, components.GameView{
		Game:     sess.Game(),
		Sync:     sess.State(),
		Opponent: opponent,
	}, "")
}

// New handles POST /play/new, keeping the chosen opponent
func (h *PlayHandler) New(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	target := "/"
	if opponent := r.PostFormValue("opponent"); opponent != "" {
		target += "?" + url.Values{"opponent": {opponent}}.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// Leave handles POST /play/leave, forgetting the player on this browser
func (h *PlayHandler) Leave(w http.ResponseWriter, r *http.Request) {
	middleware.ClearPlayerCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *PlayHandler) renderGame(w http.ResponseWriter, r *http.Request, status int, view components.GameView, message string) {
	render(w, r, status, pages.Game(pages.GameData{
		PageData:  pageData(r, "Play"),
		GameView:  view,
		Opponents: bot.Names(),
		Error:     message,
	}))
}

// resume rebuilds the session described by the posted form
func (h *PlayHandler) resume(w http.ResponseWriter, r *http.Request, player *model.Player) (*session.Session, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		return nil, "", errBadGameForm
	}

	board, err := model.ParseBoard(r.PostFormValue("board"))
	if err != nil {
		return nil, "", err
	}
	game := engine.Restore(board, model.Mark(r.PostFormValue("turn")))

	state, ok := session.ParseState(r.PostFormValue("sync"))
	if !ok {
		state = session.StatePlaying
	}

	opts := []session.Option{session.WithPlayer(player)}
	name := r.PostFormValue("opponent")
	strategy, err := h.opponent(name)
	if err != nil {
		return nil, "", err
	}
	if strategy != nil {
		opts = append(opts, session.WithOpponent(strategy))
	}

	reporter := session.ReporterFunc(h.stats.UpdatePlayerStats)
	return session.Resume(reporter, game, state, opts...), name, nil
}

// opponent returns the named bot, or nil for a two-player game
func (h *PlayHandler) opponent(name string) (bot.Strategy, error) {
	if name == "" {
		return nil, nil
	}
	return bot.New(name, h.random)
}

func (h *PlayHandler) report(ctx context.Context, sess *session.Session) {
	state, err := sess.Sync(ctx)
	if err != nil {
		h.logger.Warn("reporting game result failed",
			"player_id", sess.Player().ID,
			"state", state,
			"error", err,
		)
	}
}

func setupMessage(err error) (string, bool) {
	switch {
	case errors.Is(err, model.ErrNameRequired):
		return "Please enter your name", true
	case errors.Is(err, model.ErrNameTooLong):
		return "Name must be at most " + strconv.Itoa(model.MaxNameLength) + " characters", true
	case errors.Is(err, model.ErrPlayerNameTaken):
		return "Player name already exists", true
	}
	return "", false
}

func moveMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrCellOccupied):
		return "That square is already taken."
	case errors.Is(err, model.ErrInvalidPosition):
		return "Choose a square on the board."
	case errors.Is(err, model.ErrGameOver), errors.Is(err, session.ErrNotPlaying):
		return "The game is over. Start a new game."
	}
	return "That move is not allowed."
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/oxgrid/tictactoe/internal/model"
)

// PlayerCookieName holds the id of the player using this browser
const PlayerCookieName = "ttt_player"

const playerContextKey = contextKey("player")

// PlayerLookup loads a player by id
type PlayerLookup interface {
	GetPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
}

// GetPlayer retrieves the current player from the request context
// Returns nil before setup
func GetPlayer(ctx context.Context) *model.Player {
	player, _ := ctx.Value(playerContextKey).(*model.Player)
	return player
}

// WithPlayer returns a copy of ctx carrying player
func WithPlayer(ctx context.Context, player *model.Player) context.Context {
	return context.WithValue(ctx, playerContextKey, player)
}

// SetPlayerCookie remembers the player for a year
func SetPlayerCookie(w http.ResponseWriter, id model.PlayerID, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     PlayerCookieName,
		Value:    string(id),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearPlayerCookie forgets the player
func ClearPlayerCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     PlayerCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Player loads the player named by the cookie into the request context,
// refreshing their stats on every page load. A cookie for a player that no
// longer exists is cleared. Other lookup failures go to onError.
func Player(lookup PlayerLookup, onError func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(PlayerCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			player, err := lookup.GetPlayer(r.Context(), model.PlayerID(cookie.Value))
			switch {
			case errors.Is(err, model.ErrPlayerNotFound):
				ClearPlayerCookie(w)
				player = nil
			case err != nil:
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPlayer(r.Context(), player)))
		})
	}
}

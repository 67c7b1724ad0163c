package request

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes bounds request bodies
const MaxBodyBytes = 1 << 16

// CreatePlayerRequest is the request body for creating a player
type CreatePlayerRequest struct {
	Name string `json:"name"`
}

// UpdateStatsRequest is the request body for recording a game result
type UpdateStatsRequest struct {
	Result string `json:"result"`
}

// Decode reads a JSON body into dst. An empty body leaves dst zero-valued so
// missing fields are reported by validation rather than as malformed JSON.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

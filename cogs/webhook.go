package cogs

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"fislacko-go/games/fiasco"
	"fislacko-go/utils"
)

// Slack response types
const (
	responseInChannel = "in_channel"
	responseEphemeral = "ephemeral"
)

// SlashResponse is the JSON body returned to a Slack-style slash command
type SlashResponse struct {
	Text         string `json:"text"`
	ResponseType string `json:"response_type"`
}

// SlashHandler serves the fiasco command as a form-posted slash command
type SlashHandler struct {
	dispatcher *fiasco.Dispatcher
	token      string
}

// NewSlashHandler creates the HTTP surface. A non-empty token must match the
// token field of every request.
func NewSlashHandler(dispatcher *fiasco.Dispatcher, token string) *SlashHandler {
	return &SlashHandler{dispatcher: dispatcher, token: token}
}

func (h *SlashHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	if h.token != "" && subtle.ConstantTimeCompare([]byte(r.Form.Get("token")), []byte(h.token)) != 1 {
		utils.BotLogf("HTTP", "rejected slash command with bad token from %s", r.RemoteAddr)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	req := fiasco.Request{
		SessionID: r.Form.Get("channel_id"),
		Text:      r.Form.Get("text"),
		UserID:    r.Form.Get("user_id"),
		UserName:  r.Form.Get("user_name"),
	}
	if req.SessionID == "" || req.UserID == "" {
		http.Error(w, "channel_id and user_id are required", http.StatusBadRequest)
		return
	}

	resp := h.dispatcher.Handle(r.Context(), req)

	out := SlashResponse{Text: resp.Text, ResponseType: responseEphemeral}
	if resp.Broadcast {
		out.ResponseType = responseInChannel
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		utils.BotLogf("HTTP", "encode response failed: %v", err)
	}
}

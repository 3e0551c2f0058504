package api

import (
	"encoding/json"
	"net/http"

	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/service"
)

// envelope is the loose success wrapper the backend puts around most
// payloads: {"success": true, "message": "...", "data": {...}}.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// CheckResponse converts a non-2xx status, or a 2xx body carrying
// "success": false, into a *common.HTTPError.
func CheckResponse(method, path string, resp *service.Response) error {
	env := parseEnvelope(resp.Body)

	if resp.OK() && (env.Success == nil || *env.Success) {
		return nil
	}

	return &common.HTTPError{
		Method:  method,
		Path:    path,
		Status:  resp.Status,
		Message: failureMessage(resp.Status, env),
		Body:    resp.Body,
	}
}

// Message returns the server's message field, if any.
func Message(resp *service.Response) string {
	return parseEnvelope(resp.Body).Message
}

func parseEnvelope(body []byte) envelope {
	var env envelope
	// Bare arrays and scalars are valid payloads with no envelope.
	_ = json.Unmarshal(body, &env)
	return env
}

func failureMessage(status int, env envelope) string {
	switch {
	case env.Message != "":
		return env.Message
	case env.Error != "":
		return env.Error
	case status >= 200 && status < 300:
		return "request reported failure"
	default:
		return http.StatusText(status)
	}
}

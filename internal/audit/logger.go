package audit

import (
	"encoding/json"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

// Event is one audit record. The activity pipeline writes these for
// every tracking outcome it swallows, so a failed activity write is
// invisible to the user but never invisible to operators.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Component string         `json:"component"`
	Action    string         `json:"action"`
	User      string         `json:"user,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Success   bool           `json:"success"`
	Error     string         `json:"error,omitempty"`
}

var auditLogger = log.Output(os.Stdout).With().Logger()

// Log records an audit event.
func Log(component, action, user string, details map[string]any, success bool, err error) {
	event := Event{
		Timestamp: time.Now().UTC(),
		Component: component,
		Action:    action,
		User:      user,
		Details:   details,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}

	entry, marshalErr := json.Marshal(event)
	if marshalErr != nil {
		// Fall back to plain structured fields when the details map
		// cannot be marshalled.
		auditLogger.Error().
			Str("component", component).
			Str("action", action).
			Str("user", user).
			Bool("success", success).
			Err(err).
			Msg("audit log (fallback)")
		return
	}
	auditLogger.Log().RawJSON("audit_event", entry).Msg("")
}

package actions

import (
	"encoding/json"

	"github.com/thesrcielos/PadelTracker/internal/apperrors"
	"github.com/thesrcielos/PadelTracker/websocket/message"
)

func decode(msg message.Message, out interface{}) error {
	if len(msg.Payload) == 0 {
		return apperrors.NewAppError(400, "Missing payload", nil)
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return apperrors.NewAppError(400, "Invalid payload", err)
	}
	return nil
}

package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	errInvalidPayload = errors.New("invalid payload")
	errNotJoined      = errors.New("join the room before taking a seat")
)

// Inbound actions.
const (
	actionJoinRoom     = "joinRoom"
	actionReadyForRole = "readyForRole"
	actionLock         = "lock"
	actionMove         = "move"
	actionRestartGame  = "restartGame"
	actionLeave        = "leave"
)

// Outbound events answered to one connection only.
const (
	eventAllowed = "allowed"
	eventError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	Name string `json:"name" validate:"required,max=64"`
	Room string `json:"room" validate:"required,max=64"`
	Mode string `json:"mode" validate:"required_without=GameMode"`
	// GameMode is the field name older clients use for Mode.
	GameMode string `json:"gameMode"`
}

func (that *JoinRoomPayload) mode() string {
	if that.Mode != "" {
		return that.Mode
	}

	return that.GameMode
}

type ReadyForRolePayload struct {
	Name string `json:"name" validate:"required,max=64"`
	Room string `json:"room" validate:"required,max=64"`
}

type LockPayload struct {
	Room   string `json:"room" validate:"required"`
	Cell   *int   `json:"cell" validate:"required,min=0,max=8"`
	Action string `json:"action" validate:"required,oneof=lock unlock"`
}

type MovePayload struct {
	Room   string `json:"room" validate:"required"`
	Cell   *int   `json:"cell" validate:"required,min=0,max=8"`
	Marker string `json:"marker" validate:"required,oneof=X O X_HALF O_HALF"`
	Seat   string `json:"seat" validate:"omitempty,oneof=X O"`
}

type RestartGamePayload struct {
	Room           string `json:"room" validate:"required"`
	PreserveScores bool   `json:"preserveScores"`
	RerollSkills   bool   `json:"rerollSkills"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// decodePayload unmarshals the payload into dst and validates its fields.
func decodePayload(validate *validator.Validate, msg *Message, dst any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: %s requires a payload", errInvalidPayload, msg.Action)
	}

	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %w", errInvalidPayload, err)
	}

	return nil
}

func encodeMessage(action string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
		raw = data
	}

	data, err := json.Marshal(Message{Action: action, Payload: raw})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}

	return data, nil
}

package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zeusync/zeuscene/internal/core/scene"
	"github.com/zeusync/zeuscene/internal/editor"
)

// Actions accepted on the websocket.
const (
	ActionAddObject           = "add_object"
	ActionAddModel            = "add_model"
	ActionAddEffect           = "add_effect"
	ActionUpdateObject        = "update_object"
	ActionDeleteObject        = "delete_object"
	ActionSelect              = "select"
	ActionAddKeyframe         = "add_keyframe"
	ActionAddKeyframeSnapshot = "add_keyframe_snapshot"
	ActionRemoveKeyframes     = "remove_keyframes"
	ActionPlay                = "play"
	ActionPause               = "pause"
	ActionToggle              = "toggle"
	ActionSeek                = "seek"
	ActionReset               = "reset"
	ActionSetDuration         = "set_duration"
)

// Reply types.
const (
	MessageAck   = "ack"
	MessageError = "error"
)

// Command is an inbound editor operation sent by a UI client.
type Command struct {
	Action    string           `json:"action"`
	RequestID string           `json:"requestId,omitempty"`
	ID        string           `json:"id,omitempty"`
	Kind      scene.Kind       `json:"kind,omitempty"`
	Name      string           `json:"name,omitempty"`
	Transform *scene.Transform `json:"transform,omitempty"`
	Patch     *scene.Patch     `json:"patch,omitempty"`
	Property  scene.Property   `json:"property,omitempty"`
	Value     *scene.Vec3      `json:"value,omitempty"`
	Time      *float64         `json:"time,omitempty"`
	// Duration is in seconds: the lifetime for add_effect, the timeline
	// length for set_duration.
	Duration float64 `json:"duration,omitempty"`
}

// Reply answers a Command. Applied is false for operations that were valid
// but changed nothing, such as updating an object that no longer exists.
type Reply struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId,omitempty"`
	Action    string `json:"action,omitempty"`
	ID        string `json:"id,omitempty"`
	Applied   bool   `json:"applied"`
	Playing   *bool  `json:"playing,omitempty"`
	Removed   int    `json:"removed,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DecodeCommand parses one websocket message.
func DecodeCommand(p []byte) (Command, error) {
	var cmd Command
	if err := json.Unmarshal(p, &cmd); err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}
	if cmd.Action == "" {
		return Command{}, fmt.Errorf("%w: action", ErrMissingField)
	}
	return cmd, nil
}

func errorReply(cmd Command, err error) Reply {
	return Reply{
		Type:      MessageError,
		RequestID: cmd.RequestID,
		Action:    cmd.Action,
		Error:     err.Error(),
	}
}

// Apply runs cmd against the editor.
func Apply(e *editor.Editor, cmd Command) (Reply, error) {
	r := Reply{Type: MessageAck, RequestID: cmd.RequestID, Action: cmd.Action, ID: cmd.ID, Applied: true}

	var err error
	switch cmd.Action {
	case ActionAddObject:
		r.ID, err = e.AddObject(cmd.Kind, cmd.Transform)
	case ActionAddModel:
		r.ID, err = e.AddModel(cmd.Kind, cmd.Name)
	case ActionAddEffect:
		lifetime := time.Duration(cmd.Duration * float64(time.Second))
		r.ID, err = e.AddEffect(cmd.Kind, cmd.Transform, lifetime)
	case ActionUpdateObject:
		if cmd.ID == "" || cmd.Patch == nil {
			return Reply{}, fmt.Errorf("%w: id and patch", ErrMissingField)
		}
		r.Applied = e.UpdateObject(cmd.ID, *cmd.Patch)
	case ActionDeleteObject:
		if cmd.ID == "" {
			return Reply{}, fmt.Errorf("%w: id", ErrMissingField)
		}
		r.Applied = e.DeleteObject(cmd.ID)
	case ActionSelect:
		r.Applied = e.Select(cmd.ID)
	case ActionAddKeyframe:
		err = addKeyframe(e, cmd)
	case ActionAddKeyframeSnapshot:
		if cmd.ID == "" {
			return Reply{}, fmt.Errorf("%w: id", ErrMissingField)
		}
		err = e.AddKeyframeSnapshot(cmd.ID, cmd.Time)
	case ActionRemoveKeyframes:
		if cmd.ID == "" || cmd.Time == nil {
			return Reply{}, fmt.Errorf("%w: id and time", ErrMissingField)
		}
		r.Removed = e.RemoveKeyframesAt(cmd.ID, *cmd.Time)
		r.Applied = r.Removed > 0
	case ActionPlay:
		e.Play()
	case ActionPause:
		e.Pause()
	case ActionToggle:
		playing := e.TogglePlay()
		r.Playing = &playing
	case ActionSeek:
		if cmd.Time == nil {
			return Reply{}, fmt.Errorf("%w: time", ErrMissingField)
		}
		e.Seek(*cmd.Time)
	case ActionReset:
		e.Reset()
	case ActionSetDuration:
		e.SetDuration(cmd.Duration)
	default:
		return Reply{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
	if err != nil {
		return Reply{}, err
	}
	return r, nil
}

// addKeyframe records an explicit value for cmd.ID, or the current value of
// the selected object when no id is given.
func addKeyframe(e *editor.Editor, cmd Command) error {
	if cmd.Property == "" {
		return fmt.Errorf("%w: property", ErrMissingField)
	}
	if cmd.ID == "" {
		return e.AddKeyframeForSelection(cmd.Property)
	}
	if cmd.Value == nil {
		return fmt.Errorf("%w: value", ErrMissingField)
	}
	at := e.CurrentTime()
	if cmd.Time != nil {
		at = *cmd.Time
	}
	return e.AddKeyframe(cmd.ID, at, cmd.Property, *cmd.Value)
}

package editor

const (
	EventObjectAdded     = "object.added"
	EventObjectUpdated   = "object.updated"
	EventObjectRemoved   = "object.removed"
	EventKeyframeAdded   = "keyframe.added"
	EventKeyframeRemoved = "keyframe.removed"
	EventSelection       = "selection.changed"
	EventClock           = "clock.changed"
	EventSceneLoaded     = "scene.loaded"
)

const eventSource = "editor"

// RemovedObject is the payload of EventObjectRemoved.
type RemovedObject struct {
	ID        string
	Expired   bool
	Keyframes int
}

// ClockState is the payload of EventClock.
type ClockState struct {
	Time     float64
	Playing  bool
	Duration float64
}

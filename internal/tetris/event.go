package tetris

// EventType identifies something that happened in a session.
type EventType int

const (
	EventMove EventType = iota
	EventBlocked
	EventRotate
	EventLock
	EventLineClear
	EventHold
	EventGameOver
	EventStart
	EventPause
	EventResume
	EventRestart
)

func (t EventType) String() string {
	switch t {
	case EventMove:
		return "move"
	case EventBlocked:
		return "blocked"
	case EventRotate:
		return "rotate"
	case EventLock:
		return "lock"
	case EventLineClear:
		return "line-clear"
	case EventHold:
		return "hold"
	case EventGameOver:
		return "game-over"
	case EventStart:
		return "start"
	case EventPause:
		return "pause"
	case EventResume:
		return "resume"
	case EventRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// Event is delivered to notifiers after a state change.
type Event struct {
	Type    EventType
	Rows    int      // rows cleared, for EventLineClear
	Lines   []int    // row indexes as they were removed, for EventLineClear
	Cleared [][]Cell // contents of each removed row, parallel to Lines
	Score   int
	Level   int
}

// Notifier receives session events. Implementations must not block.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) {
	f(e)
}

// MultiNotifier fans an event out to several notifiers in order.
type MultiNotifier []Notifier

// Notify forwards e to every non-nil notifier.
func (m MultiNotifier) Notify(e Event) {
	for _, n := range m {
		if n != nil {
			n.Notify(e)
		}
	}
}

// Action is a discrete player input.
type Action int

const (
	ActionNone Action = iota
	ActionMoveLeft
	ActionMoveRight
	ActionSoftDrop
	ActionHardDrop
	ActionRotateCW
	ActionRotateCCW
	ActionHold
	ActionTogglePause
)

func (a Action) String() string {
	switch a {
	case ActionMoveLeft:
		return "move-left"
	case ActionMoveRight:
		return "move-right"
	case ActionSoftDrop:
		return "soft-drop"
	case ActionHardDrop:
		return "hard-drop"
	case ActionRotateCW:
		return "rotate-cw"
	case ActionRotateCCW:
		return "rotate-ccw"
	case ActionHold:
		return "hold"
	case ActionTogglePause:
		return "toggle-pause"
	default:
		return "none"
	}
}

package parser

// TrackerState is the container tracker's position in a marker/name pair
type TrackerState int

const (
	StateIdle TrackerState = iota
	StateAwaitingPageName
	StateAwaitingWindowName
	StateAwaitingGraphicName
)

// String returns a string representation of the TrackerState
func (s TrackerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateAwaitingPageName:
		return "AwaitingPageName"
	case StateAwaitingWindowName:
		return "AwaitingWindowName"
	case StateAwaitingGraphicName:
		return "AwaitingGraphicName"
	default:
		return "Unknown"
	}
}

// Transition describes what a row did to the container tracker
type Transition int

const (
	// TransitionNone means the row is not structural and goes on to extraction.
	TransitionNone Transition = iota
	TransitionMarker
	TransitionOpenPage
	TransitionOpenWindow
	TransitionOpenGraphic
)

// Consumed reports whether the row is used up by the tracker
func (t Transition) Consumed() bool {
	return t != TransitionNone
}

// Step computes the tracker transition for one normalized row. A pending
// marker survives non-INAME rows and is replaced by a newer marker.
func Step(state TrackerState, elem, text string, trackGraphics bool) (TrackerState, Transition) {
	switch elem {
	case ElemNodeType:
		switch text {
		case MarkerPage:
			return StateAwaitingPageName, TransitionMarker
		case MarkerWindow:
			return StateAwaitingWindowName, TransitionMarker
		case MarkerGraphic:
			if trackGraphics {
				return StateAwaitingGraphicName, TransitionMarker
			}
		}
	case ElemName:
		switch state {
		case StateAwaitingPageName:
			return StateIdle, TransitionOpenPage
		case StateAwaitingWindowName:
			return StateIdle, TransitionOpenWindow
		case StateAwaitingGraphicName:
			return StateIdle, TransitionOpenGraphic
		}
	}
	return state, TransitionNone
}

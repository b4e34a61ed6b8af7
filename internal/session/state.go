package session

// State is the coarse operating mode shown as SYSTEM_STATUS.
type State string

const (
	StateIdle       State = "IDLE"
	StateProcessing State = "PROCESSING"
	StateListening  State = "LISTENING"
	StateSpeaking   State = "SPEAKING"
)

// Merge resolves the displayed state. Listening wins over speaking, and both
// win over the controller's own idle/processing state.
func Merge(listening, speaking bool, controller State) State {
	switch {
	case listening:
		return StateListening
	case speaking:
		return StateSpeaking
	default:
		return controller
	}
}

package session

// Phase is the controller's lifecycle. There is no remote pause: "continue"
// is only a label on the start control.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
)

func (p Phase) String() string {
	if p == PhaseRunning {
		return "running"
	}
	return "idle"
}

// Start control labels.
const (
	LabelStart    = "Start Simulation"
	LabelRunning  = "Running Simulation..."
	LabelContinue = "Continue Simulation"
)

// State is the process-wide session state.
type State struct {
	Phase        Phase
	Started      bool
	Cursor       float64
	MaxObserved  float64
	StartLabel   string
	StartEnabled bool
	Connected    bool
}

func initialState() State {
	return State{Phase: PhaseIdle, StartLabel: LabelStart, StartEnabled: true, Connected: true}
}

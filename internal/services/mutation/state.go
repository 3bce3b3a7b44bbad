package mutation

// State is the phase a single mutation is in.
type State int

const (
	Idle State = iota
	Validating
	OptimisticallyApplied
	Persisting
	Committed
	RolledBack
)

var stateNames = [...]string{
	Idle:                  "idle",
	Validating:            "validating",
	OptimisticallyApplied: "optimistically_applied",
	Persisting:            "persisting",
	Committed:             "committed",
	RolledBack:            "rolled_back",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Transition is reported to observers on every state change.
type Transition struct {
	Op   string
	From State
	To   State
	Err  error
}

// Observer receives transitions synchronously, on the mutating goroutine.
type Observer func(Transition)

var allowed = map[State][]State{
	Idle:                  {Validating},
	Validating:            {OptimisticallyApplied, Idle},
	OptimisticallyApplied: {Persisting},
	Persisting:            {Committed, RolledBack},
	Committed:             {Idle},
	RolledBack:            {Idle},
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	for _, s := range allowed[from] {
		if s == to {
			return true
		}
	}
	return false
}

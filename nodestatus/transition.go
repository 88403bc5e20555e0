package nodestatus

// InitialStatus resolves the initial pseudostate, taken as soon as a machine is created.
func InitialStatus(canSleep bool) Status {
	if canSleep {
		return Asleep
	}

	return Unknown
}

// Transition returns the status following event in status current. canSleep must be the
// node's sleep capability read at the time of the call. Events without a transition from
// current are ignored and current is returned, the network may deliver stale signals.
func Transition(current Status, event Event, canSleep bool) Status {
	switch current {
	case initial:
		return InitialStatus(canSleep)

	case Unknown:
		switch event {
		case EventDead:
			if !canSleep {
				return Dead
			}
		case EventAlive:
			if !canSleep {
				return Alive
			}
		case EventAsleep:
			if canSleep {
				return Asleep
			}
		case EventAwake:
			if canSleep {
				return Awake
			}
		}

	case Dead:
		if event == EventAlive {
			return Alive
		}

	case Alive:
		switch event {
		case EventDead:
			return Dead
		case EventAsleep:
			// A node first detected as listening may be corrected to sleep capable later.
			if canSleep {
				return Asleep
			}
		}

	case Asleep:
		if event == EventAwake {
			return Awake
		}

	case Awake:
		if event == EventAsleep {
			return Asleep
		}
	}

	return current
}

// Package nodestatus tracks the reachability and sleep lifecycle of a single mesh node.
//
// Listening nodes are either Dead or Alive, sleep capable nodes are either Asleep or Awake.
// Which partition a node may enter is decided by its live sleep capability at the moment
// each event is applied, so a node classified late as sleep capable moves across.
package nodestatus

import (
	"fmt"
	"strings"
)

type Status uint8

const (
	Unknown Status = iota
	Dead
	Alive
	Asleep
	Awake

	// initial is the pseudostate a machine is in before its first resolution, it is
	// never observable.
	initial Status = 0xff
)

var statusNames = map[Status]string{
	Unknown: "unknown",
	Dead:    "dead",
	Alive:   "alive",
	Asleep:  "asleep",
	Awake:   "awake",
}

func (s Status) String() string {
	if name, found := statusNames[s]; found {
		return name
	}

	return fmt.Sprintf("Status(%d)", uint8(s))
}

// IsSleepingStatus is true for the statuses only sleep capable nodes may hold.
func (s Status) IsSleepingStatus() bool {
	return s == Asleep || s == Awake
}

// IsListeningStatus is true for the statuses only listening nodes may hold.
func (s Status) IsListeningStatus() bool {
	return s == Dead || s == Alive
}

func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if strings.EqualFold(name, s) {
			return status, nil
		}
	}

	return Unknown, fmt.Errorf("unknown node status: %q", s)
}

// Event is raised by the transport layer based on communication outcomes.
type Event uint8

const (
	// EventDead follows repeated communication failure.
	EventDead Event = iota
	// EventAlive follows successful communication.
	EventAlive
	// EventAsleep is raised when a node signalled or was inferred to be idling.
	EventAsleep
	// EventAwake is raised when a wake up notification was received.
	EventAwake
)

var eventNames = map[Event]string{
	EventDead:   "DEAD",
	EventAlive:  "ALIVE",
	EventAsleep: "ASLEEP",
	EventAwake:  "AWAKE",
}

func (e Event) String() string {
	if name, found := eventNames[e]; found {
		return name
	}

	return fmt.Sprintf("Event(%d)", uint8(e))
}

func ParseEvent(s string) (Event, error) {
	for event, name := range eventNames {
		if strings.EqualFold(name, s) {
			return event, nil
		}
	}

	return 0, fmt.Errorf("unknown node status event: %q", s)
}

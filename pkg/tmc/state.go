package tmc

import "fmt"

// State is a protocol state machine state.
type State uint8

const (
	StateFindStart State = iota
	StateFindData
	StateFindAck
)

var stateNames = map[State]string{
	StateFindStart: "FindStart",
	StateFindData:  "FindData",
	StateFindAck:   "FindAck",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", s)
}

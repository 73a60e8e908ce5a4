package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Trace records one Thought-Action-Observation cycle of the agent loop.
// Traces are handed to the memory manager after an attempt completes so the
// agent can learn from past routes.
type Trace struct {
	ID          string
	SessionID   string
	TurnNumber  int
	Thought     string
	Action      string
	ActionInput json.RawMessage
	Observation string
	Success     bool
	Timestamp   int64
	Metadata    map[string]string
}

// String renders the trace in compact THOUGHT/ACTION/OBSERVATION form for logs.
func (t *Trace) String() string {
	var b strings.Builder
	if t.Thought != "" {
		fmt.Fprintf(&b, "THOUGHT: %s | ", t.Thought)
	}
	fmt.Fprintf(&b, "ACTION: %s", t.Action)
	if len(t.ActionInput) > 0 && string(t.ActionInput) != "{}" {
		fmt.Fprintf(&b, "(%s)", t.ActionInput)
	}
	fmt.Fprintf(&b, " | OBSERVATION: %s", t.Observation)
	if !t.Success {
		b.WriteString(" [failed]")
	}
	return b.String()
}

package memory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parcelpilot/courier-go-sdk/core"
)

// DeliveryMemory stores one Thought-Action-Observation cycle from a delivery
// attempt. Successful route segments teach the agent shortcuts; failures
// teach it which moves are refused where.
type DeliveryMemory struct {
	id        string
	ownerID   string
	attemptID string
	createdAt time.Time
	embedding []float32
	metadata  map[string]interface{}

	Thought     string
	Action      string
	Observation string
	Success     bool
}

// NewDeliveryMemory creates a DeliveryMemory from a trace.
func NewDeliveryMemory(ownerID string, trace *core.Trace) *DeliveryMemory {
	metadata := map[string]interface{}{
		"action":  trace.Action,
		"success": trace.Success,
	}
	for k, v := range trace.Metadata {
		metadata[k] = v
	}

	return &DeliveryMemory{
		id:          uuid.New().String(),
		ownerID:     ownerID,
		attemptID:   trace.SessionID,
		createdAt:   time.Now(),
		metadata:    metadata,
		Thought:     trace.Thought,
		Action:      trace.Action,
		Observation: trace.Observation,
		Success:     trace.Success,
	}
}

// NewDeliveryMemoryFromStorage rebuilds a DeliveryMemory from stored data.
// Store implementations use this when deserializing.
func NewDeliveryMemoryFromStorage(
	id string,
	ownerID string,
	attemptID string,
	createdAt time.Time,
	embedding []float32,
	thought string,
	action string,
	observation string,
	success bool,
	metadata map[string]interface{},
) *DeliveryMemory {
	return &DeliveryMemory{
		id:          id,
		ownerID:     ownerID,
		attemptID:   attemptID,
		createdAt:   createdAt,
		embedding:   embedding,
		metadata:    metadata,
		Thought:     thought,
		Action:      action,
		Observation: observation,
		Success:     success,
	}
}

func (d *DeliveryMemory) ID() string                        { return d.id }
func (d *DeliveryMemory) OwnerID() string                   { return d.ownerID }
func (d *DeliveryMemory) Type() string                      { return "delivery" }
func (d *DeliveryMemory) Content() interface{}              { return d }
func (d *DeliveryMemory) Metadata() map[string]interface{}  { return d.metadata }
func (d *DeliveryMemory) CreatedAt() time.Time              { return d.createdAt }
func (d *DeliveryMemory) Embedding() []float32              { return d.embedding }
func (d *DeliveryMemory) SetEmbedding(embedding []float32)  { d.embedding = embedding }

// AttemptID returns the delivery attempt this memory came from.
func (d *DeliveryMemory) AttemptID() string { return d.attemptID }

// Format renders the memory for prompt injection, truncated to MaxLength.
func (d *DeliveryMemory) Format(ctx FormatContext) string {
	var b strings.Builder
	if d.Success {
		b.WriteString("[worked] ")
	} else {
		b.WriteString("[failed] ")
	}
	fmt.Fprintf(&b, "%s -> %s", d.Action, d.Observation)
	if d.Thought != "" {
		fmt.Fprintf(&b, " (reasoning: %s)", d.Thought)
	}

	return truncate(b.String(), ctx.MaxLength)
}

// truncate shortens s to at most maxLen bytes, marking the cut with an
// ellipsis. Limits too small to hold the ellipsis cut verbatim instead of
// slicing out of range.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// FormatForEmbedding renders the text that gets embedded.
func (d *DeliveryMemory) FormatForEmbedding() string {
	parts := []string{d.Action, d.Observation}
	if d.Thought != "" {
		parts = append([]string{d.Thought}, parts...)
	}
	return strings.Join(parts, ". ")
}

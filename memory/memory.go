package memory

import (
	"context"
	"time"

	"github.com/parcelpilot/courier-go-sdk/core"
)

// Memory is the core interface for all memory types. Implementations control
// their own content structure, prompt formatting, and metadata schema.
type Memory interface {
	// Identity and ownership.
	ID() string
	OwnerID() string // Agent ID (empty = global memory, available to all agents)
	Type() string    // Memory type identifier (e.g., "delivery")

	// Content and metadata.
	Content() interface{}
	Metadata() map[string]interface{}

	CreatedAt() time.Time

	// Format renders this memory for prompt injection.
	Format(ctx FormatContext) string

	Embedding() []float32
	SetEmbedding([]float32)
}

// FormatContext gives Format implementations room to truncate or emphasize.
type FormatContext struct {
	AgentID   string
	Query     string
	MaxLength int
}

// Manager orchestrates memory operations. The engine is opinionated about
// WHEN to use memory (retrieve before an attempt, record after); the Manager
// is unopinionated about HOW.
type Manager interface {
	// Retrieve finds relevant memories for the query and returns a formatted
	// string ready for prompt injection, or "" when nothing relevant exists.
	Retrieve(ctx context.Context, agentID string, query string) (string, error)

	// RecordTraces stores an attempt's traces. The Manager decides which
	// traces are worth keeping and how to process them.
	RecordTraces(ctx context.Context, agentID string, traces []*core.Trace) error
}

// Store is the vector storage backend interface.
type Store interface {
	// Store saves a memory; its embedding must be set first.
	Store(ctx context.Context, mem Memory) error

	// Query retrieves memories by vector similarity, highest first.
	Query(ctx context.Context, agentID string, embedding []float32, limit int) ([]Memory, error)

	// Get retrieves a specific memory by ID and owner.
	Get(ctx context.Context, ownerID string, memoryID string) (Memory, error)

	// Delete removes a memory permanently.
	Delete(ctx context.Context, ownerID string, memoryID string) error

	// Close releases resources.
	Close() error
}

// Embedder converts text to vector embeddings. It is an implementation
// detail of the Manager; the engine never sees it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

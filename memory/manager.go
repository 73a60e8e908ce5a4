package memory

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/dgraph-io/ristretto"

	"github.com/parcelpilot/courier-go-sdk/core"
)

// SimpleManager is the SDK-provided Manager implementation. It embeds trace
// text, stores it in the configured vector store, and formats vector-similar
// memories back into a prompt section. Repeated embeddings are served from a
// ristretto cache so identical queries and route segments are embedded once.
type SimpleManager struct {
	store    Store
	embedder Embedder
	config   *Config
	cache    *ristretto.Cache
}

// Config holds SimpleManager configuration.
type Config struct {
	// Enabled toggles the memory system. Default: false (opt-in).
	Enabled bool

	// RetrieveLimit caps how many memories one query pulls. Default: 10.
	RetrieveLimit int

	// CacheMaxBytes bounds the embedding cache. Default: 16 MiB.
	CacheMaxBytes int64
}

// DefaultConfig returns sensible defaults for local use.
var DefaultConfig = &Config{
	Enabled:       false,
	RetrieveLimit: 10,
	CacheMaxBytes: 16 << 20,
}

// NewSimpleManager creates a SimpleManager. A nil config means DefaultConfig.
func NewSimpleManager(store Store, embedder Embedder, config *Config) (*SimpleManager, error) {
	if config == nil {
		config = DefaultConfig
	}
	if config.RetrieveLimit <= 0 {
		config.RetrieveLimit = DefaultConfig.RetrieveLimit
	}
	if config.CacheMaxBytes <= 0 {
		config.CacheMaxBytes = DefaultConfig.CacheMaxBytes
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10_000,
		MaxCost:     config.CacheMaxBytes,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	return &SimpleManager{
		store:    store,
		embedder: embedder,
		config:   config,
		cache:    cache,
	}, nil
}

// Retrieve finds relevant memories and returns a formatted prompt section.
func (m *SimpleManager) Retrieve(ctx context.Context, agentID string, query string) (string, error) {
	if !m.config.Enabled {
		return "", nil
	}

	embedding, err := m.embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	memories, err := m.store.Query(ctx, agentID, embedding, m.config.RetrieveLimit)
	if err != nil {
		return "", fmt.Errorf("query store: %w", err)
	}

	log.Printf("[MEMORY] Retrieved %d memories for query: %q", len(memories), truncateLog(query, 50))
	if len(memories) == 0 {
		return "", nil
	}

	return m.formatMemories(memories, agentID, query), nil
}

// RecordTraces stores the traces worth keeping from one attempt.
func (m *SimpleManager) RecordTraces(ctx context.Context, agentID string, traces []*core.Trace) error {
	if !m.config.Enabled {
		return nil
	}

	storable := m.filterStorableTraces(traces)
	if len(storable) == 0 {
		log.Printf("[MEMORY] No traces worth storing (filtered out)")
		return nil
	}

	log.Printf("[MEMORY] Recording %d traces (filtered from %d)", len(storable), len(traces))

	for i, trace := range storable {
		mem := NewDeliveryMemory(agentID, trace)

		embedding, err := m.embed(ctx, mem.FormatForEmbedding())
		if err != nil {
			log.Printf("[MEMORY] Failed to embed trace #%d: %v", i+1, err)
			continue
		}
		mem.SetEmbedding(embedding)

		if err := m.store.Store(ctx, mem); err != nil {
			log.Printf("[MEMORY] Failed to store trace #%d: %v", i+1, err)
			continue
		}
	}

	return nil
}

// embed returns the embedding for text, consulting the cache first.
func (m *SimpleManager) embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := m.cache.Get(text); ok {
		if embedding, ok := cached.([]float32); ok {
			return embedding, nil
		}
	}

	embedding, err := m.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	m.cache.Set(text, embedding, int64(len(embedding)*4))
	return embedding, nil
}

// formatMemories renders retrieved memories into a prompt section.
func (m *SimpleManager) formatMemories(memories []Memory, agentID string, query string) string {
	parts := []string{"=== PAST DELIVERY EXPERIENCE ===\n"}

	maxLengthPerMemory := 2000 / len(memories)
	if maxLengthPerMemory < 100 {
		maxLengthPerMemory = 100
	}

	for i, mem := range memories {
		formatted := mem.Format(FormatContext{
			AgentID:   agentID,
			Query:     query,
			MaxLength: maxLengthPerMemory,
		})
		parts = append(parts, fmt.Sprintf("%d. %s\n", i+1, formatted))
	}

	return strings.Join(parts, "\n")
}

// filterStorableTraces selects the traces worth storing. A full route is
// always worth keeping; single reads usually are not.
func (m *SimpleManager) filterStorableTraces(traces []*core.Trace) []*core.Trace {
	if len(traces) > 1 {
		return traces
	}

	if len(traces) == 1 {
		trace := traces[0]

		// Failures teach which moves get refused where.
		if !trace.Success {
			return traces
		}

		// Substantive reasoning tends to encode route knowledge.
		if len(trace.Thought) > 30 {
			return traces
		}

		// Skip lone trivial reads.
	}

	return nil
}

// truncateLog truncates text for logging.
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

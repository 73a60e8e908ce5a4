// Package chromem backs the memory store with chromem-go, a pure Go embedded
// vector database. Each agent gets its own collection for namespace isolation.
package chromem

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/parcelpilot/courier-go-sdk/memory"
)

// Store wraps chromem-go as a memory.Store.
type Store struct {
	db          *chromem.DB
	collections map[string]*chromem.Collection
	mu          sync.RWMutex
}

// New creates an empty in-memory store.
func New() (*Store, error) {
	return &Store{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
	}, nil
}

// getOrCreateCollection returns the collection for an agent.
func (s *Store) getOrCreateCollection(agentID string) (*chromem.Collection, error) {
	s.mu.RLock()
	col, exists := s.collections[agentID]
	s.mu.RUnlock()
	if exists {
		return col, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if col, exists := s.collections[agentID]; exists {
		return col, nil
	}

	name := "agent_" + agentID
	if agentID == "" {
		name = "global"
	}

	// We supply embeddings ourselves and keep the default cosine distance.
	col, err := s.db.CreateCollection(name, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}
	s.collections[agentID] = col
	return col, nil
}

// deliveryContent is the serialized form of a DeliveryMemory's content.
type deliveryContent struct {
	Thought     string `json:"thought"`
	Action      string `json:"action"`
	Observation string `json:"observation"`
	Success     bool   `json:"success"`
}

// Store saves a memory with its embedding.
func (s *Store) Store(ctx context.Context, mem memory.Memory) error {
	col, err := s.getOrCreateCollection(mem.OwnerID())
	if err != nil {
		return err
	}

	dm, ok := mem.(*memory.DeliveryMemory)
	if !ok {
		return fmt.Errorf("chromem store only handles delivery memories, got %T", mem)
	}

	contentBytes, err := json.Marshal(deliveryContent{
		Thought:     dm.Thought,
		Action:      dm.Action,
		Observation: dm.Observation,
		Success:     dm.Success,
	})
	if err != nil {
		return fmt.Errorf("marshal content: %w", err)
	}

	metadata := map[string]string{
		"type":       mem.Type(),
		"owner_id":   mem.OwnerID(),
		"attempt_id": dm.AttemptID(),
		"created_at": mem.CreatedAt().Format(time.RFC3339),
	}
	for k, v := range mem.Metadata() {
		if str, ok := v.(string); ok {
			metadata[k] = str
		} else if bytes, err := json.Marshal(v); err == nil {
			metadata[k] = string(bytes)
		}
	}

	log.Printf("[CHROMEM] Storing memory: id=%s, owner=%s", mem.ID(), mem.OwnerID())
	doc := chromem.Document{
		ID:        mem.ID(),
		Content:   string(contentBytes),
		Embedding: mem.Embedding(),
		Metadata:  metadata,
	}
	if err := col.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	return nil
}

// Query retrieves memories by vector similarity, highest first.
func (s *Store) Query(ctx context.Context, agentID string, embedding []float32, limit int) ([]memory.Memory, error) {
	col, err := s.getOrCreateCollection(agentID)
	if err != nil {
		return nil, err
	}

	where := map[string]string{"owner_id": agentID}

	// chromem-go requires nResults <= collection size; retry smaller.
	var results []chromem.Result
	for currentLimit := limit; currentLimit >= 1; currentLimit-- {
		results, err = col.QueryEmbedding(ctx, embedding, currentLimit, where, nil)
		if err == nil {
			break
		}
		if isInsufficientDocsError(err) {
			if currentLimit == 1 {
				return nil, nil
			}
			continue
		}
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	var memories []memory.Memory
	for i, result := range results {
		mem, err := deserialize(result)
		if err != nil {
			log.Printf("[CHROMEM] Skipping result #%d: %v", i+1, err)
			continue
		}
		memories = append(memories, mem)
	}
	return memories, nil
}

// Get is unsupported: chromem-go has no lookup by ID.
func (s *Store) Get(ctx context.Context, ownerID string, memoryID string) (memory.Memory, error) {
	return nil, fmt.Errorf("Get not supported in chromem store (use Query instead)")
}

// Delete is a no-op: chromem-go does not expose delete by ID.
func (s *Store) Delete(ctx context.Context, ownerID string, memoryID string) error {
	log.Printf("[CHROMEM] Delete not supported (chromem-go limitation)")
	return nil
}

// Close releases resources. chromem-go keeps everything in memory.
func (s *Store) Close() error { return nil }

// deserialize converts a chromem result back to a Memory.
func deserialize(result chromem.Result) (memory.Memory, error) {
	if t := result.Metadata["type"]; t != "delivery" {
		return nil, fmt.Errorf("unknown memory type: %s", t)
	}

	var content deliveryContent
	if err := json.Unmarshal([]byte(result.Content), &content); err != nil {
		return nil, fmt.Errorf("unmarshal content: %w", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, result.Metadata["created_at"])

	metadata := make(map[string]interface{})
	for k, v := range result.Metadata {
		switch k {
		case "type", "owner_id", "attempt_id", "created_at":
		default:
			metadata[k] = v
		}
	}

	return memory.NewDeliveryMemoryFromStorage(
		result.ID,
		result.Metadata["owner_id"],
		result.Metadata["attempt_id"],
		createdAt,
		result.Embedding,
		content.Thought,
		content.Action,
		content.Observation,
		content.Success,
		metadata,
	), nil
}

// isInsufficientDocsError checks whether the error came from asking for more
// results than the collection holds.
func isInsufficientDocsError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "nResults must be") || strings.Contains(msg, "number of documents")
}

// Package memory provides a local, in-memory vector store for courier memory.
//
// The memory system stores delivery traces (Thought-Action-Observation
// cycles) so an agent can learn routes from past attempts. Memories are
// namespaced by AgentID for multi-agent support.
//
// Architecture:
//   - Store: vector storage backend (chromem-go locally, pgvector in production)
//   - Embedder: text-to-vector conversion (mock for tests, ONNX behind the
//     onnx build tag, hosted embedders in production)
//   - Manager: orchestrates retrieval and recording
//
// Integration with the engine:
//   - RETRIEVE phase: relevant memories are folded into the system prompt
//     before an attempt starts
//   - RECORD phase: the attempt's traces are stored after it completes
//
// Both phases are best-effort; a memory failure never fails a delivery.
package memory

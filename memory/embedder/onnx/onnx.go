//go:build onnx

// Package onnx embeds text locally with a MiniLM-class sentence transformer
// running on ONNX Runtime. Build with -tags onnx and point Config at the
// model and tokenizer files.
package onnx

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

const maxSeqLen = 128

// Config configures the ONNX embedder.
type Config struct {
	// ModelPath is the path to the ONNX model file.
	ModelPath string

	// TokenizerPath is the path to the tokenizer.json file.
	TokenizerPath string

	// Dimensions is the embedding vector size (default 384, all-MiniLM-L6-v2).
	Dimensions int

	// RuntimeLibrary is the path to libonnxruntime. Defaults to the
	// ONNXRUNTIME_LIB environment variable.
	RuntimeLibrary string
}

// Embedder generates embeddings with ONNX Runtime. Safe for concurrent use.
type Embedder struct {
	session    *ort.DynamicAdvancedSession
	vocab      map[string]int64
	clsID      int64
	sepID      int64
	unkID      int64
	dimensions int
	mu         sync.Mutex
}

// New creates an ONNX embedder.
func New(cfg Config) (*Embedder, error) {
	if cfg.ModelPath == "" {
		return nil, fmt.Errorf("ModelPath is required")
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = 384
	}
	if cfg.RuntimeLibrary == "" {
		cfg.RuntimeLibrary = os.Getenv("ONNXRUNTIME_LIB")
	}
	if cfg.RuntimeLibrary != "" {
		ort.SetSharedLibraryPath(cfg.RuntimeLibrary)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("initialize onnx runtime: %w", err)
	}

	vocab, err := loadVocab(cfg.TokenizerPath)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"last_hidden_state"},
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("create onnx session: %w", err)
	}

	e := &Embedder{
		session:    session,
		vocab:      vocab,
		dimensions: cfg.Dimensions,
	}
	e.clsID = e.lookup("[CLS]")
	e.sepID = e.lookup("[SEP]")
	e.unkID = e.lookup("[UNK]")
	return e, nil
}

// Close destroys the session.
func (e *Embedder) Close() error {
	e.session.Destroy()
	return nil
}

// Dimensions returns the embedding size.
func (e *Embedder) Dimensions() int { return e.dimensions }

// Embed converts text to a unit-length embedding vector.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	inputIDs, attentionMask := e.encode(text)

	shape := ort.NewShape(1, int64(maxSeqLen))
	idsTensor, err := ort.NewTensor(shape, inputIDs)
	if err != nil {
		return nil, fmt.Errorf("create input_ids tensor: %w", err)
	}
	defer idsTensor.Destroy()

	maskTensor, err := ort.NewTensor(shape, attentionMask)
	if err != nil {
		return nil, fmt.Errorf("create attention_mask tensor: %w", err)
	}
	defer maskTensor.Destroy()

	typesTensor, err := ort.NewTensor(shape, make([]int64, maxSeqLen))
	if err != nil {
		return nil, fmt.Errorf("create token_type_ids tensor: %w", err)
	}
	defer typesTensor.Destroy()

	outputs := []ort.Value{nil}
	e.mu.Lock()
	err = e.session.Run([]ort.Value{idsTensor, maskTensor, typesTensor}, outputs)
	e.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("onnx inference: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out != nil {
				out.Destroy()
			}
		}
	}()

	hidden, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type %T", outputs[0])
	}

	return meanPool(hidden.GetData(), hidden.GetShape(), attentionMask, e.dimensions)
}

// encode lowercases, splits on whitespace/punctuation boundaries, and maps
// each piece to a vocab ID via greedy longest-match WordPiece.
func (e *Embedder) encode(text string) (inputIDs, attentionMask []int64) {
	inputIDs = make([]int64, maxSeqLen)
	attentionMask = make([]int64, maxSeqLen)

	inputIDs[0] = e.clsID
	attentionMask[0] = 1
	pos := 1

	for _, word := range splitWords(strings.ToLower(text)) {
		for _, id := range e.wordpiece(word) {
			if pos >= maxSeqLen-1 {
				break
			}
			inputIDs[pos] = id
			attentionMask[pos] = 1
			pos++
		}
	}

	inputIDs[pos] = e.sepID
	attentionMask[pos] = 1
	return inputIDs, attentionMask
}

// wordpiece greedily consumes the longest vocab prefix of the word,
// continuing with "##"-prefixed pieces.
func (e *Embedder) wordpiece(word string) []int64 {
	var ids []int64
	rest := word
	first := true
	for rest != "" {
		prefix := "##"
		if first {
			prefix = ""
		}
		matched := 0
		var matchedID int64
		for n := len(rest); n > 0; n-- {
			if id, ok := e.vocab[prefix+rest[:n]]; ok {
				matched = n
				matchedID = id
				break
			}
		}
		if matched == 0 {
			return []int64{e.unkID}
		}
		ids = append(ids, matchedID)
		rest = rest[matched:]
		first = false
	}
	return ids
}

func (e *Embedder) lookup(token string) int64 {
	if id, ok := e.vocab[token]; ok {
		return id
	}
	return 0
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})
}

// meanPool averages the attended token vectors of a [1, seq, hidden] output
// and normalizes to unit length.
func meanPool(data []float32, shape []int64, attentionMask []int64, dims int) ([]float32, error) {
	if len(shape) != 3 || shape[0] != 1 || int(shape[2]) != dims {
		return nil, fmt.Errorf("unexpected output shape %v", shape)
	}
	seqLen := int(shape[1])

	embedding := make([]float32, dims)
	var attended float32
	for i := 0; i < seqLen && i < len(attentionMask); i++ {
		if attentionMask[i] == 0 {
			continue
		}
		attended++
		offset := i * dims
		for j := 0; j < dims; j++ {
			embedding[j] += data[offset+j]
		}
	}
	if attended == 0 {
		return nil, fmt.Errorf("no attended tokens")
	}

	var norm float32
	for j := range embedding {
		embedding[j] /= attended
		norm += embedding[j] * embedding[j]
	}
	norm = float32(math.Sqrt(float64(norm)))
	if norm > 0 {
		for j := range embedding {
			embedding[j] /= norm
		}
	}
	return embedding, nil
}

// loadVocab reads the vocabulary out of a HuggingFace tokenizer.json.
func loadVocab(path string) (map[string]int64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file struct {
		Model struct {
			Vocab map[string]int64 `json:"vocab"`
		} `json:"model"`
	}
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse tokenizer.json: %w", err)
	}
	if len(file.Model.Vocab) == 0 {
		return nil, fmt.Errorf("tokenizer.json has no vocab")
	}
	return file.Model.Vocab, nil
}

package entities

import (
	"errors"
	"fmt"
	"testing"
)

func TestChunk_Fields(t *testing.T) {
	chunk := Chunk{
		SourceName: "report.csv",
		Content:    "Columns: a, b",
		Position:   0,
	}

	if chunk.SourceName != "report.csv" {
		t.Errorf("expected source report.csv, got %s", chunk.SourceName)
	}
	if chunk.Position != 0 {
		t.Errorf("expected position 0, got %d", chunk.Position)
	}
}

func TestContentKind_Values(t *testing.T) {
	if ContentKindText != "free_text" {
		t.Errorf("unexpected text kind: %s", ContentKindText)
	}
	if ContentKindTabular != "tabular" {
		t.Errorf("unexpected tabular kind: %s", ContentKindTabular)
	}
}

func TestChatRequest_WithHistory(t *testing.T) {
	req := ChatRequest{
		Query: "what is X?",
		History: []ChatMessage{
			{Role: "user", Content: "previous Q"},
			{Role: "assistant", Content: "previous A"},
		},
	}

	if len(req.History) != 2 {
		t.Errorf("expected 2 history items, got %d", len(req.History))
	}
}

func TestChatResponse_WithSources(t *testing.T) {
	resp := ChatResponse{
		Answer: "The answer is 42",
		Sources: []Chunk{
			{SourceName: "guide.pdf", Content: "excerpt", Position: 3},
		},
	}

	if resp.Answer == "" {
		t.Error("answer should not be empty")
	}
	if len(resp.Sources) == 0 {
		t.Error("sources should not be empty")
	}
}

func TestErrors_WrapAndMatch(t *testing.T) {
	err := fmt.Errorf("%w: content kind %q", ErrUnsupportedFormat, "binary")

	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Error("wrapped error should match ErrUnsupportedFormat")
	}
	if errors.Is(err, ErrDuplicateSource) {
		t.Error("should not match ErrDuplicateSource")
	}
}

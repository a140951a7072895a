package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/docchat-go/internal/domain/entities"
	"github.com/docchat/docchat-go/internal/domain/ports"
)

// mockLLM implements ports.LLMService and records the last prompt.
type mockLLM struct {
	response   string
	lastPrompt string
}

func (m *mockLLM) Generate(ctx context.Context, prompt string, context []string) (string, error) {
	m.lastPrompt = prompt
	if m.response != "" {
		return m.response, nil
	}
	return "mocked answer", nil
}

func (m *mockLLM) GenerateStream(ctx context.Context, prompt string, context []string) (<-chan ports.StreamToken, error) {
	m.lastPrompt = prompt
	ch := make(chan ports.StreamToken, 1)
	go func() {
		ch <- ports.StreamToken{Content: m.response, Done: true}
		close(ch)
	}()
	return ch, nil
}

func newChatFixture(chunks []entities.Chunk) (*ChatUseCase, *mockLLM) {
	store := newFakeStore()
	_ = store.Append(context.Background(), chunks)
	llm := &mockLLM{}
	uc := NewChatUseCase(defaultRetriever(), store, llm, 30, 6)
	return uc, llm
}

func TestChatUseCase_AnswerWithSources(t *testing.T) {
	uc, llm := newChatFixture(chunksOf("the revenue grew by ten percent", "staff list"))
	llm.response = "Revenue grew."

	resp, err := uc.Chat(context.Background(), &entities.ChatRequest{Query: "revenue"})

	require.NoError(t, err)
	assert.Equal(t, "Revenue grew.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, 0, resp.Sources[0].Position)
}

func TestChatUseCase_RendersContextBlocks(t *testing.T) {
	uc, llm := newChatFixture([]entities.Chunk{
		{SourceName: "report.csv", Content: "alpha beta", Position: 0},
	})

	_, err := uc.Chat(context.Background(), &entities.ChatRequest{Query: "alpha"})

	require.NoError(t, err)
	assert.Contains(t, llm.lastPrompt, "[From report.csv]: alpha beta")
	assert.Contains(t, llm.lastPrompt, "Question: alpha")
}

func TestChatUseCase_DisclosesEmptySelection(t *testing.T) {
	store := newFakeStore() // Empty knowledge base
	llm := &mockLLM{}
	uc := NewChatUseCase(defaultRetriever(), store, llm, 30, 6)

	resp, err := uc.Chat(context.Background(), &entities.ChatRequest{Query: "anything"})

	require.NoError(t, err)
	assert.Empty(t, resp.Sources)
	assert.Contains(t, llm.lastPrompt, "No matching document excerpts were found")
	assert.NotContains(t, llm.lastPrompt, "[From ")
}

func TestChatUseCase_HistoryWindow(t *testing.T) {
	uc, llm := newChatFixture(chunksOf("alpha"))

	var history []entities.ChatMessage
	for i := 0; i < 10; i++ {
		history = append(history,
			entities.ChatMessage{Role: "user", Content: "old question"},
			entities.ChatMessage{Role: "assistant", Content: "old answer"},
		)
	}
	history[0].Content = "very first question"

	_, err := uc.Chat(context.Background(), &entities.ChatRequest{
		Query:   "alpha",
		History: history,
	})

	require.NoError(t, err)
	assert.Contains(t, llm.lastPrompt, "Conversation so far:")
	assert.Contains(t, llm.lastPrompt, "old answer")
	// Only the trailing window reaches the prompt.
	assert.NotContains(t, llm.lastPrompt, "very first question")
}

func TestChatUseCase_Retrieve(t *testing.T) {
	uc, _ := newChatFixture(chunksOf("apple banana", "banana cherry", "apple apple cherry"))

	selected, err := uc.Retrieve(context.Background(), "apple")

	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, 0, selected[0].Position)
	assert.Equal(t, 2, selected[1].Position)
}

func TestChatUseCase_ChatStream(t *testing.T) {
	uc, llm := newChatFixture(chunksOf("streaming data here"))
	llm.response = "streamed"

	selected, tokens, err := uc.ChatStream(context.Background(), &entities.ChatRequest{Query: "streaming"})

	require.NoError(t, err)
	require.Len(t, selected, 1)

	var answer string
	for token := range tokens {
		answer += token.Content
	}
	assert.Equal(t, "streamed", answer)
}

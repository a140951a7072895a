// Package usecases - chat.go handles retrieval-grounded answer generation.
package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/docchat/docchat-go/internal/domain/entities"
	"github.com/docchat/docchat-go/internal/domain/ports"
	"github.com/docchat/docchat-go/internal/logger"
)

// DefaultHistoryWindow bounds how many recent turns reach the prompt.
const DefaultHistoryWindow = 6

// ChatUseCase retrieves grounding chunks for a query and hands them, with
// recent history, to the generation collaborator.
type ChatUseCase struct {
	retriever     *Retriever
	store         ports.KnowledgeStore
	llm           ports.LLMService
	limit         int
	historyWindow int
}

// NewChatUseCase creates a ChatUseCase with injected dependencies.
func NewChatUseCase(retriever *Retriever, store ports.KnowledgeStore, llm ports.LLMService, limit, historyWindow int) *ChatUseCase {
	if limit <= 0 {
		limit = DefaultSelectLimit
	}
	if historyWindow <= 0 {
		historyWindow = DefaultHistoryWindow
	}
	return &ChatUseCase{
		retriever:     retriever,
		store:         store,
		llm:           llm,
		limit:         limit,
		historyWindow: historyWindow,
	}
}

// Retrieve returns the ranked selection for a query without generating an
// answer. Used by inspection surfaces.
func (uc *ChatUseCase) Retrieve(ctx context.Context, query string) ([]entities.Chunk, error) {
	chunks, err := uc.store.Chunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base: %w", err)
	}
	return uc.retriever.Select(query, chunks, uc.limit), nil
}

// Chat retrieves context for the query and generates an answer.
func (uc *ChatUseCase) Chat(ctx context.Context, req *entities.ChatRequest) (*entities.ChatResponse, error) {
	selected, err := uc.Retrieve(ctx, req.Query)
	if err != nil {
		return nil, err
	}

	contextParts := renderContext(selected)
	prompt := uc.buildPrompt(req, contextParts)

	answer, err := uc.llm.Generate(ctx, prompt, contextParts)
	if err != nil {
		return nil, fmt.Errorf("generating response: %w", err)
	}

	return &entities.ChatResponse{
		Answer:  answer,
		Sources: selected,
	}, nil
}

// ChatStream is Chat with token-by-token output. The selected chunks are
// returned up front so the UI can show citations while tokens arrive.
func (uc *ChatUseCase) ChatStream(ctx context.Context, req *entities.ChatRequest) ([]entities.Chunk, <-chan ports.StreamToken, error) {
	selected, err := uc.Retrieve(ctx, req.Query)
	if err != nil {
		return nil, nil, err
	}

	contextParts := renderContext(selected)
	prompt := uc.buildPrompt(req, contextParts)

	tokens, err := uc.llm.GenerateStream(ctx, prompt, contextParts)
	if err != nil {
		return nil, nil, fmt.Errorf("generating response: %w", err)
	}
	return selected, tokens, nil
}

// renderContext renders each selected chunk as "[From <source>]: <content>".
func renderContext(chunks []entities.Chunk) []string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = fmt.Sprintf("[From %s]: %s", c.SourceName, c.Content)
	}
	return parts
}

// buildPrompt assembles the LLM prompt from context blocks, recent history,
// and the query. An empty selection is disclosed explicitly so the model can
// say it has no grounding instead of inventing one.
func (uc *ChatUseCase) buildPrompt(req *entities.ChatRequest, contextParts []string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant. Answer the question based on the provided document excerpts.\n\n")

	if len(contextParts) == 0 {
		logger.Debug("No grounding context for query %q", req.Query)
		sb.WriteString("No matching document excerpts were found for this question. ")
		sb.WriteString("Say so, and answer only from the conversation if possible.\n")
	} else {
		sb.WriteString("Document excerpts:\n")
		sb.WriteString(strings.Join(contextParts, "\n\n"))
		sb.WriteString("\n")
	}

	history := req.History
	if len(history) > uc.historyWindow {
		history = history[len(history)-uc.historyWindow:]
	}
	if len(history) > 0 {
		sb.WriteString("\nConversation so far:\n")
		for _, msg := range history {
			sb.WriteString(msg.Role)
			sb.WriteString(": ")
			sb.WriteString(msg.Content)
			sb.WriteString("\n")
		}
	}

	sb.WriteString("\nQuestion: ")
	sb.WriteString(req.Query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

// Package usecases - retriever.go selects the chunks most relevant to a query.
package usecases

import (
	"regexp"
	"sort"
	"strings"

	"github.com/docchat/docchat-go/internal/domain/entities"
)

// Reference retrieval policy values. Heuristic constants with no derivation
// beyond compatibility; override via RetrievalPolicy rather than editing.
const (
	DefaultSelectLimit              = 30
	DefaultSmallCorpusThreshold     = 50
	DefaultPhraseBonus              = 10
	DefaultFallbackLimit            = 5
	DefaultAggregationFallbackLimit = 20
)

// DefaultAggregationKeywords classify a query as asking for a total,
// summary, or overview rather than a specific fact.
var DefaultAggregationKeywords = []string{
	"total", "count", "sum", "average", "summary", "report", "analyze", "overview", "all",
}

// minTermLength: query tokens this short or shorter are discarded.
const minTermLength = 2

// nonWordRe splits a lower-cased query on runs of non-word characters.
var nonWordRe = regexp.MustCompile(`\W+`)

// RetrievalPolicy bundles the scoring and sizing constants of the retriever.
type RetrievalPolicy struct {
	Limit                    int      // Normal-mode output bound
	SmallCorpusThreshold     int      // Below this count, aggregation queries get everything
	PhraseBonus              int      // Score bonus for an exact-phrase occurrence
	FallbackLimit            int      // Empty-match fallback size, normal mode
	AggregationFallbackLimit int      // Empty-match fallback size under aggregation intent
	AggregationKeywords      []string // Substring-matched against the lower-cased query
}

// DefaultRetrievalPolicy returns the reference policy.
func DefaultRetrievalPolicy() RetrievalPolicy {
	return RetrievalPolicy{
		Limit:                    DefaultSelectLimit,
		SmallCorpusThreshold:     DefaultSmallCorpusThreshold,
		PhraseBonus:              DefaultPhraseBonus,
		FallbackLimit:            DefaultFallbackLimit,
		AggregationFallbackLimit: DefaultAggregationFallbackLimit,
		AggregationKeywords:      DefaultAggregationKeywords,
	}
}

// scoredChunk pairs a chunk with its lexical score for the duration of one
// retrieval call. Never persisted.
type scoredChunk struct {
	chunk entities.Chunk
	score int
}

// Retriever ranks knowledge-base chunks against a query using substring
// scoring. It holds no state besides policy; Select is a pure function of
// its inputs and never fails.
type Retriever struct {
	policy RetrievalPolicy
}

// NewRetriever creates a Retriever, filling unset policy fields with the
// reference defaults.
func NewRetriever(policy RetrievalPolicy) *Retriever {
	if policy.Limit <= 0 {
		policy.Limit = DefaultSelectLimit
	}
	if policy.SmallCorpusThreshold <= 0 {
		policy.SmallCorpusThreshold = DefaultSmallCorpusThreshold
	}
	if policy.PhraseBonus <= 0 {
		policy.PhraseBonus = DefaultPhraseBonus
	}
	if policy.FallbackLimit <= 0 {
		policy.FallbackLimit = DefaultFallbackLimit
	}
	if policy.AggregationFallbackLimit <= 0 {
		policy.AggregationFallbackLimit = DefaultAggregationFallbackLimit
	}
	if len(policy.AggregationKeywords) == 0 {
		policy.AggregationKeywords = DefaultAggregationKeywords
	}
	return &Retriever{policy: policy}
}

// Select scores and ranks chunks for the query and returns an ordered,
// size-bounded selection. limit bounds normal-mode output; non-positive
// values use the policy default. Chunks must be the full knowledge-base
// collection in insertion order - ties keep that order, and fallback
// selections are prefixes of it.
func (r *Retriever) Select(query string, chunks []entities.Chunk, limit int) []entities.Chunk {
	if len(chunks) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = r.policy.Limit
	}

	queryLower := strings.ToLower(query)
	aggregation := r.hasAggregationIntent(queryLower)

	// Aggregation queries over a small corpus get complete context:
	// filtering risks dropping data a correct total or summary needs.
	if aggregation && len(chunks) < r.policy.SmallCorpusThreshold {
		out := make([]entities.Chunk, len(chunks))
		copy(out, chunks)
		return out
	}

	terms := tokenize(queryLower)
	phrase := strings.TrimSpace(queryLower)

	scored := make([]scoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		contentLower := strings.ToLower(chunk.Content)

		score := 0
		if phrase != "" && strings.Contains(contentLower, phrase) {
			score += r.policy.PhraseBonus
		}
		for _, term := range terms {
			if strings.Contains(contentLower, term) {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredChunk{chunk: chunk, score: score})
		}
	}

	// Stable: equal scores keep collection order, which reflects document
	// and page order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	bound := limit
	if aggregation {
		bound = limit * 2
	}
	if len(scored) > bound {
		scored = scored[:bound]
	}

	if len(scored) == 0 {
		return r.fallback(chunks, aggregation)
	}

	out := make([]entities.Chunk, len(scored))
	for i, sc := range scored {
		out[i] = sc.chunk
	}
	return out
}

// fallback returns a prefix of the collection so that queries sharing no
// vocabulary with any chunk still receive some grounding context.
func (r *Retriever) fallback(chunks []entities.Chunk, aggregation bool) []entities.Chunk {
	n := r.policy.FallbackLimit
	if aggregation {
		n = r.policy.AggregationFallbackLimit
	}
	if n > len(chunks) {
		n = len(chunks)
	}
	out := make([]entities.Chunk, n)
	copy(out, chunks[:n])
	return out
}

// hasAggregationIntent reports whether any intent keyword occurs as a
// substring of the lower-cased query.
func (r *Retriever) hasAggregationIntent(queryLower string) bool {
	for _, kw := range r.policy.AggregationKeywords {
		if strings.Contains(queryLower, kw) {
			return true
		}
	}
	return false
}

// tokenize splits a lower-cased query on runs of non-word characters and
// discards short tokens. Duplicates are kept: a repeated term compounds its
// per-term increment.
func tokenize(queryLower string) []string {
	var terms []string
	for _, tok := range nonWordRe.Split(queryLower, -1) {
		if len(tok) > minTermLength {
			terms = append(terms, tok)
		}
	}
	return terms
}

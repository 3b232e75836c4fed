package history

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/visage-chat/visage/internal/vectorstore"
)

// NoHistorySentinel is returned by RetrieveRecent for sessions without any
// exchange. It is a valid context string, not an error.
const NoHistorySentinel = "No prior questions. This is the start of the conversation."

const (
	// DefaultTopK is the breadth of semantic context retrieval.
	DefaultTopK = 3
	// DefaultRecentN is the number of exchanges the recency fallback returns.
	DefaultRecentN = 3

	// recencyProbe stands in for an unconstrained query: the embedding model
	// rejects empty input, so recency is approximated by a fixed broad probe.
	recencyProbe = "recent conversation"
)

const (
	metaSessionID  = "session_id"
	metaExchangeID = "exchange_id"
	metaComposite  = "composite"
	metaRole       = "role"
)

// Index stores conversation exchanges for semantic retrieval. Each exchange
// is indexed as two documents — the question and the answer — sharing one
// composite text, so either side can match a query but the exchange counts
// once.
type Index struct {
	store vectorstore.Store
}

func NewIndex(store vectorstore.Store) *Index {
	return &Index{store: store}
}

// Append indexes one conversational turn. Losing history silently degrades
// future context quality, so failures surface to the caller.
func (i *Index) Append(ctx context.Context, sessionID, question, answer string) error {
	exchangeID := uuid.New().String()
	questionText := "User: " + question
	answerText := "AI: " + answer
	composite := questionText + "\n" + answerText

	docs := []vectorstore.Document{
		{
			ID:   exchangeID + "_q",
			Text: questionText,
			Metadata: map[string]string{
				metaSessionID:  sessionID,
				metaExchangeID: exchangeID,
				metaComposite:  composite,
				metaRole:       "question",
			},
		},
		{
			ID:   exchangeID + "_a",
			Text: answerText,
			Metadata: map[string]string{
				metaSessionID:  sessionID,
				metaExchangeID: exchangeID,
				metaComposite:  composite,
				metaRole:       "answer",
			},
		},
	}

	for _, doc := range docs {
		if err := i.store.Upsert(ctx, doc); err != nil {
			return fmt.Errorf("appending exchange %s: %w", exchangeID, err)
		}
	}
	return nil
}

// RetrieveSemantic returns context relevant to the query, scoped to the
// session. The result is "" when the session has no matching exchange.
func (i *Index) RetrieveSemantic(ctx context.Context, sessionID, query string, topK int) (string, error) {
	matches, err := i.store.Query(ctx, query, topK, vectorstore.Filter{Key: metaSessionID, Value: sessionID})
	if err != nil {
		return "", fmt.Errorf("retrieving context for session %s: %w", sessionID, err)
	}
	return strings.Join(dedupeComposites(matches), "\n\n"), nil
}

// RetrieveRecent approximates recency with a broad probe doubled in breadth
// to compensate for the question/answer split, then keeps the last n
// exchanges. It never fails: a store error or an empty session yields the
// sentinel.
func (i *Index) RetrieveRecent(ctx context.Context, sessionID string, n int) string {
	matches, err := i.store.Query(ctx, recencyProbe, 2*n, vectorstore.Filter{Key: metaSessionID, Value: sessionID})
	if err != nil {
		slog.Warn("history: recency fallback query failed", "error", err, "session_id", sessionID)
		return NoHistorySentinel
	}

	composites := dedupeComposites(matches)
	if len(composites) == 0 {
		return NoHistorySentinel
	}
	if len(composites) > n {
		composites = composites[len(composites)-n:]
	}
	return strings.Join(composites, "\n\n")
}

// DeleteSession removes all exchanges belonging to a session.
func (i *Index) DeleteSession(ctx context.Context, sessionID string) error {
	if err := i.store.Delete(ctx, vectorstore.Filter{Key: metaSessionID, Value: sessionID}); err != nil {
		return fmt.Errorf("deleting history for session %s: %w", sessionID, err)
	}
	return nil
}

// dedupeComposites collapses question/answer documents of the same exchange
// into one composite, preserving match order.
func dedupeComposites(matches []vectorstore.Match) []string {
	seen := make(map[string]struct{}, len(matches))
	var composites []string
	for _, m := range matches {
		id := m.Metadata[metaExchangeID]
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if composite := m.Metadata[metaComposite]; composite != "" {
			composites = append(composites, composite)
		}
	}
	return composites
}

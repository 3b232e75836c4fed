package history

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visage-chat/visage/internal/vectorstore"
)

type fakeStore struct {
	docs      []vectorstore.Document
	matches   []vectorstore.Match
	queryErr  error
	upsertErr error
	lastK     int
	lastQuery string
}

func (f *fakeStore) Upsert(_ context.Context, doc vectorstore.Document) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.docs = append(f.docs, doc)
	return nil
}

func (f *fakeStore) Query(_ context.Context, text string, k int, _ vectorstore.Filter) ([]vectorstore.Match, error) {
	f.lastQuery = text
	f.lastK = k
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.matches, nil
}

func (f *fakeStore) Delete(_ context.Context, _ vectorstore.Filter) error { return nil }

func exchangeMatch(exchangeID, composite string, role string, distance float64) vectorstore.Match {
	return vectorstore.Match{
		ID:       exchangeID + "_" + role[:1],
		Distance: distance,
		Metadata: map[string]string{
			"session_id":  "s1",
			"exchange_id": exchangeID,
			"composite":   composite,
			"role":        role,
		},
	}
}

func TestAppend_StoresQuestionAndAnswerWithSharedComposite(t *testing.T) {
	store := &fakeStore{}
	idx := NewIndex(store)

	err := idx.Append(context.Background(), "s1", "What's the weather?", "Sunny today.")
	require.NoError(t, err)
	require.Len(t, store.docs, 2)

	q, a := store.docs[0], store.docs[1]
	assert.Equal(t, "User: What's the weather?", q.Text)
	assert.Equal(t, "AI: Sunny today.", a.Text)
	assert.Equal(t, q.Metadata["exchange_id"], a.Metadata["exchange_id"])
	assert.Equal(t, q.Metadata["composite"], a.Metadata["composite"])
	assert.Equal(t, "User: What's the weather?\nAI: Sunny today.", q.Metadata["composite"])
	assert.Equal(t, "question", q.Metadata["role"])
	assert.Equal(t, "answer", a.Metadata["role"])
}

func TestAppend_FailsLoudly(t *testing.T) {
	store := &fakeStore{upsertErr: vectorstore.ErrStoreUnavailable}
	idx := NewIndex(store)

	err := idx.Append(context.Background(), "s1", "q", "a")
	require.Error(t, err)
}

func TestRetrieveSemantic_EmptySessionReturnsEmpty(t *testing.T) {
	idx := NewIndex(&fakeStore{})
	got, err := idx.RetrieveSemantic(context.Background(), "s1", "anything", DefaultTopK)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveSemantic_DeduplicatesByExchange(t *testing.T) {
	composite := "User: hello\nAI: hi there"
	store := &fakeStore{matches: []vectorstore.Match{
		exchangeMatch("ex1", composite, "question", 0.1),
		exchangeMatch("ex1", composite, "answer", 0.2),
		exchangeMatch("ex2", "User: bye\nAI: goodbye", "answer", 0.3),
	}}
	idx := NewIndex(store)

	got, err := idx.RetrieveSemantic(context.Background(), "s1", "hello", DefaultTopK)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(got, composite), "an exchange matching as both question and answer counts once")
	assert.Contains(t, got, "User: bye\nAI: goodbye")
}

func TestRetrieveSemantic_PropagatesStoreError(t *testing.T) {
	idx := NewIndex(&fakeStore{queryErr: vectorstore.ErrStoreUnavailable})
	_, err := idx.RetrieveSemantic(context.Background(), "s1", "q", DefaultTopK)
	require.Error(t, err)
}

func TestRetrieveRecent_EmptySessionReturnsSentinel(t *testing.T) {
	idx := NewIndex(&fakeStore{})
	got := idx.RetrieveRecent(context.Background(), "s1", DefaultRecentN)
	assert.Equal(t, NoHistorySentinel, got)
}

func TestRetrieveRecent_StoreFailureReturnsSentinel(t *testing.T) {
	idx := NewIndex(&fakeStore{queryErr: vectorstore.ErrStoreUnavailable})
	got := idx.RetrieveRecent(context.Background(), "s1", DefaultRecentN)
	assert.Equal(t, NoHistorySentinel, got, "the recency fallback must never fail the turn")
}

func TestRetrieveRecent_DoublesBreadthAndTruncatesToLastN(t *testing.T) {
	store := &fakeStore{matches: []vectorstore.Match{
		exchangeMatch("ex1", "User: one\nAI: 1", "question", 0.1),
		exchangeMatch("ex1", "User: one\nAI: 1", "answer", 0.1),
		exchangeMatch("ex2", "User: two\nAI: 2", "question", 0.2),
		exchangeMatch("ex3", "User: three\nAI: 3", "question", 0.3),
		exchangeMatch("ex4", "User: four\nAI: 4", "question", 0.4),
	}}
	idx := NewIndex(store)

	got := idx.RetrieveRecent(context.Background(), "s1", 3)
	assert.Equal(t, 6, store.lastK, "breadth is 2n to compensate for the question/answer split")
	assert.NotContains(t, got, "User: one")
	assert.Contains(t, got, "User: two")
	assert.Contains(t, got, "User: three")
	assert.Contains(t, got, "User: four")
}

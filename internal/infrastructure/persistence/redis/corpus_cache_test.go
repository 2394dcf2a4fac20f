package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-script-ai-api/internal/domain/entity"
)

type fragmentRepoStub struct {
	mu        sync.Mutex
	fragments []entity.ReferenceFragment
	err       error
	calls     int
}

func (s *fragmentRepoStub) ListAll(context.Context) ([]entity.ReferenceFragment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.fragments, s.err
}

// memoryReadThrough 以 map 模拟 Redis 读穿
type memoryReadThrough struct {
	mu    sync.Mutex
	items map[string][]byte
	err   error
}

func (m *memoryReadThrough) GetOrLoadSafe(ctx context.Context, key string, _ time.Duration, loader func(ctx context.Context) (any, error)) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if v, ok := m.items[key]; ok {
		return v, nil
	}
	data, err := loader(ctx)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	m.items[key] = b
	return b, nil
}

func TestCachedCorpus_LoadsOnceThenServesFromCache(t *testing.T) {
	repo := &fragmentRepoStub{fragments: []entity.ReferenceFragment{
		{ID: "f1", Text: "A: 안녕", Genre: "romance", RhythmicPhrases: []string{"안녕"}},
		{ID: "f2", Text: "B: 잘가", Genre: "comedy"},
	}}
	corpus := newCachedCorpus(&memoryReadThrough{items: map[string][]byte{}}, repo, time.Minute)

	first, err := corpus.ListAll(context.Background())
	require.NoError(t, err)
	second, err := corpus.ListAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	require.Len(t, second, 2)
	assert.Equal(t, first, second)
	assert.Equal(t, "안녕", second[0].RhythmicPhrases[0])
}

func TestCachedCorpus_FallsBackWhenCacheFails(t *testing.T) {
	repo := &fragmentRepoStub{fragments: []entity.ReferenceFragment{{ID: "f1"}}}
	corpus := newCachedCorpus(&memoryReadThrough{err: errors.New("connection refused")}, repo, 0)

	got, err := corpus.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 5*time.Minute, corpus.ttl)
}

func TestCachedCorpus_StoreErrorSurfaces(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &fragmentRepoStub{err: dbErr}
	corpus := newCachedCorpus(&memoryReadThrough{items: map[string][]byte{}}, repo, time.Minute)

	_, err := corpus.ListAll(context.Background())
	require.ErrorIs(t, err, dbErr)
	// 数据库错误不应触发第二次回源
	assert.Equal(t, 1, repo.calls)
}

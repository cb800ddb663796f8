package corpus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"whattocook/internal/core/recipe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource 記錄被讀取的次數
type countingSource struct {
	docs  []Document
	err   error
	calls atomic.Int32
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Documents(context.Context) ([]Document, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

func TestStore_LazyLoadOnce(t *testing.T) {
	src := &countingSource{docs: []Document{
		{Path: "/dishes/soup/a.md", Content: "# 冬瓜汤\n"},
		{Path: "/b.md", Content: "no title"},
	}}
	store := NewStore(src, nil)
	assert.False(t, store.Loaded())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Snapshot(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Recipes, 2)
	assert.Equal(t, 0, snap.Skipped)

	r, ok := snap.Get("冬瓜汤")
	require.True(t, ok)
	assert.Equal(t, recipe.CategorySoup, r.Category)

	// 沒有標題時退回檔名 b
	_, ok = snap.Get("b")
	assert.True(t, ok)
}

func TestStore_InvalidateAndReload(t *testing.T) {
	src := &countingSource{docs: []Document{{Path: "/a.md", Content: "# 甲\n"}}}
	store := NewStore(src, recipe.NewParser())

	first, err := store.Snapshot(context.Background())
	require.NoError(t, err)

	store.Invalidate()
	assert.False(t, store.Loaded())

	second, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, int32(2), src.calls.Load())

	third, err := store.Reload(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, second, third)
	assert.Equal(t, int32(3), src.calls.Load())

	// 舊快照保持不變
	assert.Len(t, first.Recipes, 1)
}

func TestStore_LoadError(t *testing.T) {
	boom := errors.New("boom")
	store := NewStore(&countingSource{err: boom}, nil)

	_, err := store.Snapshot(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.False(t, store.Loaded())

	_, err = NewStore(nil, nil).Snapshot(context.Background())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestBuildSnapshot_SkipsAndResolves(t *testing.T) {
	fsys := testFS()
	src := NewDirSource(fsys, "test", "https://cdn.example.com")

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)

	snap := BuildSnapshot(recipe.NewParser(), docs, src)

	// bad.md 內容為空，但仍可由檔名得到標題
	assert.Equal(t, 0, snap.Skipped)
	require.Len(t, snap.Recipes, 3)

	soup, ok := snap.Get("番茄汤")
	require.True(t, ok)
	assert.Equal(t, []string{
		"https://cdn.example.com/dishes/soup/tomato.jpg",
		"https://example.com/a.png",
		"missing.png",
	}, soup.Images)

	pork, ok := snap.Get("红烧肉")
	require.True(t, ok)
	assert.Equal(t, recipe.CategoryMeatDish, pork.Category)
	assert.Equal(t, []string{"https://cdn.example.com/images/pork.png"}, pork.Images)
}

func TestBuildSnapshot_DuplicateIDLastWins(t *testing.T) {
	docs := []Document{
		{Path: "/soup/a.md", Content: "# 同名\n"},
		{Path: "/drink/b.md", Content: "# 同名\n"},
		{Path: "", Content: "untitled"},
	}

	snap := BuildSnapshot(recipe.NewParser(), docs, nil)
	assert.Len(t, snap.Recipes, 2)
	assert.Equal(t, 1, snap.Skipped)

	r, ok := snap.Get("同名")
	require.True(t, ok)
	assert.Equal(t, recipe.CategoryDrink, r.Category)
}

// gatedSource 在 Documents 內等待放行，用來模擬載入途中的檔案變動
type gatedSource struct {
	mu      sync.Mutex
	content string
	entered chan struct{}
	release chan struct{}
}

func (s *gatedSource) Name() string { return "gated" }

func (s *gatedSource) Documents(ctx context.Context) ([]Document, error) {
	s.mu.Lock()
	doc := Document{Path: "/a.md", Content: s.content}
	s.mu.Unlock()

	if s.entered != nil {
		s.entered <- struct{}{}
		<-s.release
	}
	return []Document{doc}, nil
}

func (s *gatedSource) set(content string) {
	s.mu.Lock()
	s.content = content
	s.mu.Unlock()
}

func TestStore_InvalidateDuringLoadIsNotLost(t *testing.T) {
	src := &gatedSource{
		content: "# 旧菜\n",
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	store := NewStore(src, nil)

	type result struct {
		snap *Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := store.Snapshot(context.Background())
		done <- result{snap, err}
	}()

	<-src.entered
	src.set("# 新菜\n")
	store.Invalidate()
	src.entered = nil
	close(src.release)

	res := <-done
	require.NoError(t, res.err)
	// 本次呼叫仍拿到載入結果，但不會被快取
	_, ok := res.snap.Get("旧菜")
	assert.True(t, ok)
	assert.False(t, store.Loaded())

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	_, ok = snap.Get("新菜")
	assert.True(t, ok)
	assert.True(t, store.Loaded())
}

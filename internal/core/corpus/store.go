package corpus

import (
	"context"
	"sync"
	"time"

	"whattocook/internal/core/recipe"
	"whattocook/internal/pkg/common"

	"go.uber.org/zap"
)

// Snapshot 某一時刻解析完成的菜譜集合，發布後不再修改
type Snapshot struct {
	Recipes  []recipe.Recipe
	ByID     map[string]recipe.Recipe
	LoadedAt time.Time
	// Skipped 無法解析而略過的文件數
	Skipped int
}

// Get 依 ID 取得菜譜
func (s *Snapshot) Get(id string) (recipe.Recipe, bool) {
	r, ok := s.ByID[id]
	return r, ok
}

// Store 延遲載入的菜譜快取；重新載入時整份替換快照，讀者手上的舊快照不受影響
type Store struct {
	source Source
	parser *recipe.Parser

	mu       sync.RWMutex
	snapshot *Snapshot
	// generation 每次 Invalidate 加一；載入期間有變動時不發布結果
	generation uint64
	// loadMu 確保同一時間只有一個載入流程
	loadMu sync.Mutex
}

// NewStore 創建菜譜快取
func NewStore(source Source, parser *recipe.Parser) *Store {
	if parser == nil {
		parser = recipe.NewParser()
	}
	return &Store{
		source: source,
		parser: parser,
	}
}

// Snapshot 回傳目前的快照，尚未載入時先載入
func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	if snap := s.current(); snap != nil {
		return snap, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()

	// 等待期間其他請求可能已完成載入
	if snap := s.current(); snap != nil {
		return snap, nil
	}
	return s.load(ctx)
}

// Reload 無論是否已有快照都重新載入
func (s *Store) Reload(ctx context.Context) (*Snapshot, error) {
	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	return s.load(ctx)
}

// Invalidate 丟棄目前快照，下次存取時重新載入
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.snapshot = nil
	s.generation++
	s.mu.Unlock()
	common.LogDebug("菜譜快取已失效")
}

// Loaded 是否已有快照
func (s *Store) Loaded() bool {
	return s.current() != nil
}

func (s *Store) current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	if s.source == nil {
		return nil, ErrNoSource
	}

	s.mu.RLock()
	gen := s.generation
	s.mu.RUnlock()

	start := time.Now()
	docs, err := s.source.Documents(ctx)
	if err != nil {
		common.LogCorpusLoad(s.source.Name(), 0, 0, time.Since(start), err)
		return nil, err
	}

	snap := BuildSnapshot(s.parser, docs, resolverOf(s.source))
	common.LogCorpusLoad(s.source.Name(), len(snap.Recipes), snap.Skipped, time.Since(start), nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// 載入期間已失效，結果只給本次呼叫者使用
		common.LogDebug("菜譜載入期間快取失效，不保留此快照",
			zap.String("source", s.source.Name()),
		)
		return snap, nil
	}
	s.snapshot = snap
	return snap, nil
}

func resolverOf(src Source) ImageResolver {
	if r, ok := src.(ImageResolver); ok {
		return r
	}
	return nil
}

// BuildSnapshot 解析全部文件；失敗的文件計入 Skipped，ID 重複時後者覆蓋 ByID 中的前者
func BuildSnapshot(parser *recipe.Parser, docs []Document, resolver ImageResolver) *Snapshot {
	snap := &Snapshot{
		Recipes:  make([]recipe.Recipe, 0, len(docs)),
		ByID:     make(map[string]recipe.Recipe, len(docs)),
		LoadedAt: time.Now(),
	}

	for _, doc := range docs {
		r := parser.Parse(doc.Content, doc.Path)
		if r == nil {
			snap.Skipped++
			continue
		}
		if resolver != nil {
			for i, img := range r.Images {
				if resolved, ok := resolver.ResolveImage(doc.Path, img); ok {
					r.Images[i] = resolved
				}
			}
		}
		if _, dup := snap.ByID[r.ID]; dup {
			common.LogDebug("菜譜 ID 重複，覆蓋先前的記錄",
				zap.String("id", r.ID),
				zap.String("path", doc.Path),
			)
		}
		snap.Recipes = append(snap.Recipes, *r)
		snap.ByID[r.ID] = *r
	}
	return snap
}

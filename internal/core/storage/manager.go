package storage

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"whattocook/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	// DefaultKey 偏好資料的儲存鍵
	DefaultKey = "whattocook_data"
	// DefaultPeopleCount 未設定時的用餐人數
	DefaultPeopleCount = 3
	MinPeopleCount     = 1
	MaxPeopleCount     = 10

	lastVisitLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Data 使用者偏好資料
type Data struct {
	PeopleCount     int             `json:"peopleCount"`
	PurchasedItems  map[string]bool `json:"purchasedItems"`
	FavoriteRecipes []string        `json:"favoriteRecipes"`
	LastVisit       string          `json:"lastVisit"`
}

// normalize 補齊 nil 欄位，讓 JSON 輸出 {} 與 [] 而不是 null
func (d *Data) normalize() {
	if d.PurchasedItems == nil {
		d.PurchasedItems = map[string]bool{}
	}
	if d.FavoriteRecipes == nil {
		d.FavoriteRecipes = []string{}
	}
}

// ClampPeopleCount 將人數限制在 1 到 10 之間
func ClampPeopleCount(n int) int {
	return min(MaxPeopleCount, max(MinPeopleCount, n))
}

// Manager 以單一鍵存取偏好資料；Scope 可依用戶區分鍵
type Manager struct {
	backend Backend
	key     string
	now     func() time.Time
	// mu 讀取-修改-寫入期間持有，Scope 出來的 Manager 共用同一把鎖
	mu *sync.Mutex
}

// NewManager 創建偏好管理器；key 為空時使用 DefaultKey
func NewManager(backend Backend, key string) *Manager {
	if key == "" {
		key = DefaultKey
	}
	return &Manager{
		backend: backend,
		key:     key,
		now:     time.Now,
		mu:      &sync.Mutex{},
	}
}

// Scope 回傳以 clientID 為後綴的管理器；clientID 為空時回傳自身
func (m *Manager) Scope(clientID string) *Manager {
	if clientID == "" {
		return m
	}
	scoped := *m
	scoped.key = m.key + ":" + clientID
	return &scoped
}

// Key 目前使用的儲存鍵
func (m *Manager) Key() string {
	return m.key
}

// DefaultData 預設資料
func (m *Manager) DefaultData() *Data {
	return &Data{
		PeopleCount:     DefaultPeopleCount,
		PurchasedItems:  map[string]bool{},
		FavoriteRecipes: []string{},
		LastVisit:       m.now().UTC().Format(lastVisitLayout),
	}
}

// GetData 讀取資料；不存在或內容損壞時回傳 nil
func (m *Manager) GetData(ctx context.Context) (*Data, error) {
	raw, err := m.backend.Get(ctx, m.key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var data Data
	if err := common.ParseJSONBytes(raw, &data); err != nil {
		common.LogWarn("讀取偏好資料失敗",
			zap.String("key", m.key),
			zap.Error(err),
		)
		return nil, nil
	}
	data.normalize()
	return &data, nil
}

// SaveData 寫入資料
func (m *Manager) SaveData(ctx context.Context, data *Data) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveData(ctx, data)
}

// saveData 呼叫端需持有 mu
func (m *Manager) saveData(ctx context.Context, data *Data) error {
	data.normalize()
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return m.backend.Set(ctx, m.key, raw)
}

// ClearData 刪除資料
func (m *Manager) ClearData(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backend.Delete(ctx, m.key)
}

// update 讀取現有資料（不存在時用預設值），套用修改後寫回
func (m *Manager) update(ctx context.Context, fn func(*Data)) (*Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.GetData(ctx)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = m.DefaultData()
	}
	fn(data)
	if err := m.saveData(ctx, data); err != nil {
		return nil, err
	}
	return data, nil
}

// IsFirstVisit 沒有資料或沒有最後造訪時間即為首次造訪
func (m *Manager) IsFirstVisit(ctx context.Context) (bool, error) {
	data, err := m.GetData(ctx)
	if err != nil {
		return false, err
	}
	return data == nil || data.LastVisit == "", nil
}

// UpdateLastVisit 更新最後造訪時間
func (m *Manager) UpdateLastVisit(ctx context.Context) (*Data, error) {
	return m.update(ctx, func(d *Data) {
		d.LastVisit = m.now().UTC().Format(lastVisitLayout)
	})
}

// GetFavoriteRecipes 收藏的菜譜 ID
func (m *Manager) GetFavoriteRecipes(ctx context.Context) ([]string, error) {
	data, err := m.GetData(ctx)
	if err != nil || data == nil {
		return []string{}, err
	}
	return data.FavoriteRecipes, nil
}

// AddFavoriteRecipe 加入收藏，重複加入不會產生重複項
func (m *Manager) AddFavoriteRecipe(ctx context.Context, recipeID string) (*Data, error) {
	return m.update(ctx, func(d *Data) {
		if !slices.Contains(d.FavoriteRecipes, recipeID) {
			d.FavoriteRecipes = append(d.FavoriteRecipes, recipeID)
		}
	})
}

// RemoveFavoriteRecipe 移除收藏
func (m *Manager) RemoveFavoriteRecipe(ctx context.Context, recipeID string) (*Data, error) {
	return m.update(ctx, func(d *Data) {
		d.FavoriteRecipes = slices.DeleteFunc(d.FavoriteRecipes, func(id string) bool {
			return id == recipeID
		})
	})
}

// IsFavorite 是否已收藏
func (m *Manager) IsFavorite(ctx context.Context, recipeID string) (bool, error) {
	favorites, err := m.GetFavoriteRecipes(ctx)
	if err != nil {
		return false, err
	}
	return slices.Contains(favorites, recipeID), nil
}

// GetPurchasedItems 購買狀態
func (m *Manager) GetPurchasedItems(ctx context.Context) (map[string]bool, error) {
	data, err := m.GetData(ctx)
	if err != nil || data == nil {
		return map[string]bool{}, err
	}
	return data.PurchasedItems, nil
}

// GetPurchasedItemsAsSet 已購買的品項名稱，依名稱排序
func (m *Manager) GetPurchasedItemsAsSet(ctx context.Context) ([]string, error) {
	items, err := m.GetPurchasedItems(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(items))
	for name, purchased := range items {
		if purchased {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// SetPurchasedItems 整批設定購買狀態
func (m *Manager) SetPurchasedItems(ctx context.Context, items map[string]bool) (*Data, error) {
	return m.update(ctx, func(d *Data) {
		d.PurchasedItems = items
	})
}

// TogglePurchased 切換單一品項的購買狀態
func (m *Manager) TogglePurchased(ctx context.Context, name string) (*Data, error) {
	return m.update(ctx, func(d *Data) {
		if d.PurchasedItems == nil {
			d.PurchasedItems = map[string]bool{}
		}
		d.PurchasedItems[name] = !d.PurchasedItems[name]
	})
}

// ClearPurchased 清空購買狀態
func (m *Manager) ClearPurchased(ctx context.Context) (*Data, error) {
	return m.SetPurchasedItems(ctx, map[string]bool{})
}

// GetPeopleCount 用餐人數，未設定時為 3
func (m *Manager) GetPeopleCount(ctx context.Context) (int, error) {
	data, err := m.GetData(ctx)
	if err != nil {
		return DefaultPeopleCount, err
	}
	if data == nil || data.PeopleCount == 0 {
		return DefaultPeopleCount, nil
	}
	return data.PeopleCount, nil
}

// SetPeopleCount 寫入人數；範圍限制由呼叫端以 ClampPeopleCount 處理
func (m *Manager) SetPeopleCount(ctx context.Context, count int) (*Data, error) {
	return m.update(ctx, func(d *Data) {
		d.PeopleCount = count
	})
}

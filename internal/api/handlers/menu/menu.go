package menu

import (
	"context"
	"net/http"
	"strconv"

	"whattocook/internal/api/handlers/preference"
	"whattocook/internal/core/corpus"
	menuCore "whattocook/internal/core/menu"
	"whattocook/internal/core/recipe"
	"whattocook/internal/core/storage"
	"whattocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Corpus 菜譜快照來源
type Corpus interface {
	Snapshot(ctx context.Context) (*corpus.Snapshot, error)
}

// RecommendRequest 推薦菜單；people_count 省略時使用已儲存的人數
type RecommendRequest struct {
	PeopleCount int                   `json:"people_count"`
	Preferences []menuCore.Preference `json:"preferences"`
}

// RecommendResponse 推薦結果
type RecommendResponse struct {
	PeopleCount      int             `json:"people_count"`
	Menu             []recipe.Recipe `json:"menu"`
	Advice           []string        `json:"advice"`
	Candidates       int             `json:"candidates"`
	TotalCookingTime int             `json:"total_cooking_time"`
}

// ShoppingListRequest 依菜譜 ID 產生購物清單
type ShoppingListRequest struct {
	PeopleCount int      `json:"people_count"`
	RecipeIDs   []string `json:"recipe_ids" binding:"required,min=1"`
}

// ShoppingListResponse 購物清單
type ShoppingListResponse struct {
	PeopleCount int                     `json:"people_count"`
	Items       []menuCore.ShoppingItem `json:"items"`
	Purchased   map[string]bool         `json:"purchased"`
}

// AdviceResponse 建議文字
type AdviceResponse struct {
	PeopleCount int      `json:"people_count"`
	Advice      []string `json:"advice"`
}

// Handler 菜單相關的處理器
type Handler struct {
	corpus  Corpus
	manager *storage.Manager
	random  menuCore.RandomSource
}

// NewHandler 創建菜單處理器；random 為 nil 時使用預設亂數來源
func NewHandler(c Corpus, manager *storage.Manager, random menuCore.RandomSource) *Handler {
	if random == nil {
		random = menuCore.DefaultSource()
	}
	return &Handler{corpus: c, manager: manager, random: random}
}

// HandleRecommend 根據人數和偏好推薦菜單
func (h *Handler) HandleRecommend(c *gin.Context) {
	requestID := common.RequestID(c)

	var req RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteError(c, common.BindError(err))
		return
	}
	for _, p := range req.Preferences {
		if err := p.Validate(); err != nil {
			common.WriteError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError(err.Error())))
			return
		}
	}

	people, ok := h.peopleCount(c, req.PeopleCount)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	rec := menuCore.NewRecommender(snap.Recipes, menuCore.WithRandom(h.random))
	menu := rec.RecommendMenu(people, req.Preferences...)

	total := 0
	for _, r := range menu {
		total += r.CookingTime
	}

	common.LogInfo("推薦菜單完成",
		zap.Int("people", people),
		zap.Int("preferences", len(req.Preferences)),
		zap.Int("dishes", len(menu)),
		zap.String("request_id", requestID),
	)

	c.JSON(http.StatusOK, RecommendResponse{
		PeopleCount:      people,
		Menu:             menu,
		Advice:           rec.GetRecommendations(people),
		Candidates:       len(rec.FilterByPreferences(req.Preferences...)),
		TotalCookingTime: total,
	})
}

// HandleShoppingList 以菜譜庫中的原始菜譜計算購物清單
func (h *Handler) HandleShoppingList(c *gin.Context) {
	var req ShoppingListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.BindError(err))
		return
	}

	people, ok := h.peopleCount(c, req.PeopleCount)
	if !ok {
		return
	}
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	recipes := make([]recipe.Recipe, 0, len(req.RecipeIDs))
	for _, id := range req.RecipeIDs {
		r, found := snap.Get(id)
		if !found {
			common.WriteError(c, common.ErrRecipeNotFound.Wrap(common.NewValidationError("unknown recipe id "+id)))
			return
		}
		recipes = append(recipes, r)
	}

	m, err := preference.Scope(c, h.manager)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	purchased, err := m.GetPurchasedItems(c.Request.Context())
	if err != nil {
		// 讀取失敗時仍回傳清單
		common.LogWarn("讀取購買狀態失敗", zap.Error(err))
		purchased = map[string]bool{}
	}

	c.JSON(http.StatusOK, ShoppingListResponse{
		PeopleCount: people,
		Items:       menuCore.CalculateIngredients(recipes, people),
		Purchased:   purchased,
	})
}

// HandleAdvice 依人數回傳建議
func (h *Handler) HandleAdvice(c *gin.Context) {
	requested := 0
	if raw := c.Query("people"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			common.WriteError(c, common.ErrInvalidRequest.Wrap(err))
			return
		}
		requested = n
	}

	people, ok := h.peopleCount(c, requested)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, AdviceResponse{
		PeopleCount: people,
		Advice:      menuCore.GetRecommendations(people),
	})
}

// peopleCount 未指定（0）時讀取已儲存的人數，結果限制在 1 到 10
func (h *Handler) peopleCount(c *gin.Context, requested int) (int, bool) {
	if requested != 0 {
		return storage.ClampPeopleCount(requested), true
	}

	m, err := preference.Scope(c, h.manager)
	if err != nil {
		common.WriteError(c, err)
		return 0, false
	}
	stored, err := m.GetPeopleCount(c.Request.Context())
	if err != nil {
		common.LogWarn("讀取人數設定失敗，使用預設值", zap.Error(err))
	}
	return storage.ClampPeopleCount(stored), true
}

func (h *Handler) snapshot(c *gin.Context) (*corpus.Snapshot, bool) {
	snap, err := h.corpus.Snapshot(c.Request.Context())
	if err != nil {
		common.LogError("讀取菜譜庫失敗",
			zap.Error(err),
			zap.String("request_id", common.RequestID(c)),
		)
		common.WriteError(c, common.ErrCorpusUnavailable.Wrap(err))
		return nil, false
	}
	return snap, true
}

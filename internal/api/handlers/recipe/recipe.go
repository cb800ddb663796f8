package recipe

import (
	"context"
	"net/http"
	"time"

	"whattocook/internal/core/corpus"
	recipeCore "whattocook/internal/core/recipe"
	"whattocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Corpus 菜譜快照來源
type Corpus interface {
	Snapshot(ctx context.Context) (*corpus.Snapshot, error)
	Reload(ctx context.Context) (*corpus.Snapshot, error)
}

// ListResponse 菜譜列表
type ListResponse struct {
	Total    int                 `json:"total"`
	Recipes  []recipeCore.Recipe `json:"recipes"`
	LoadedAt time.Time           `json:"loaded_at"`
}

// ParseRequest 解析單一 Markdown 文件
type ParseRequest struct {
	Path    string `json:"path"`                       // 文件路徑，用於分類推斷與標題備援
	Content string `json:"content" binding:"required"` // Markdown 原文
}

// ReloadResponse 重新載入結果
type ReloadResponse struct {
	Total    int       `json:"total"`
	Skipped  int       `json:"skipped"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Handler 菜譜相關的處理器
type Handler struct {
	corpus Corpus
	parser *recipeCore.Parser
}

// NewHandler 創建菜譜處理器
func NewHandler(c Corpus, parser *recipeCore.Parser) *Handler {
	if parser == nil {
		parser = recipeCore.NewParser()
	}
	return &Handler{corpus: c, parser: parser}
}

// HandleList 列出菜譜，可用 category 與 difficulty 篩選
func (h *Handler) HandleList(c *gin.Context) {
	category := recipeCore.Category(c.Query("category"))
	if category != "" && !category.Valid() {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("unknown category "+string(category))))
		return
	}
	difficulty := recipeCore.Difficulty(c.Query("difficulty"))
	if difficulty != "" && !difficulty.Valid() {
		common.WriteError(c, common.ErrInvalidRequest.Wrap(common.NewValidationError("unknown difficulty "+string(difficulty))))
		return
	}

	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	recipes := make([]recipeCore.Recipe, 0, len(snap.Recipes))
	for _, r := range snap.Recipes {
		if category != "" && r.Category != category {
			continue
		}
		if difficulty != "" && r.Difficulty != difficulty {
			continue
		}
		recipes = append(recipes, r)
	}

	c.JSON(http.StatusOK, ListResponse{
		Total:    len(recipes),
		Recipes:  recipes,
		LoadedAt: snap.LoadedAt,
	})
}

// HandleGet 取得單一菜譜
func (h *Handler) HandleGet(c *gin.Context) {
	snap, ok := h.snapshot(c)
	if !ok {
		return
	}

	r, found := snap.Get(c.Param("id"))
	if !found {
		common.WriteError(c, common.ErrRecipeNotFound)
		return
	}
	c.JSON(http.StatusOK, r)
}

// HandleParse 解析上傳的 Markdown，不寫入菜譜庫
func (h *Handler) HandleParse(c *gin.Context) {
	requestID := common.RequestID(c)

	var req ParseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteError(c, common.BindError(err))
		return
	}

	r, err := h.parser.ParseDocument(req.Content, req.Path)
	if err != nil {
		common.LogInfo("菜譜解析失敗",
			zap.String("path", req.Path),
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		ce := common.ErrRecipeUnparseable.Wrap(err)
		// 一律附上解析失敗原因
		c.AbortWithStatusJSON(ce.Status, ce.Response(true))
		return
	}

	c.JSON(http.StatusOK, r)
}

// HandleReload 重新載入菜譜庫
func (h *Handler) HandleReload(c *gin.Context) {
	requestID := common.RequestID(c)

	snap, err := h.corpus.Reload(c.Request.Context())
	if err != nil {
		common.LogError("重新載入菜譜庫失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		common.WriteError(c, common.ErrCorpusUnavailable.Wrap(err))
		return
	}

	common.LogInfo("菜譜庫已重新載入",
		zap.Int("total", len(snap.Recipes)),
		zap.Int("skipped", snap.Skipped),
		zap.String("request_id", requestID),
	)
	c.JSON(http.StatusOK, ReloadResponse{
		Total:    len(snap.Recipes),
		Skipped:  snap.Skipped,
		LoadedAt: snap.LoadedAt,
	})
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

package preference

import (
	"net/http"

	"whattocook/internal/core/storage"
	"whattocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// ClientIDHeader 區分不同用戶偏好資料的請求頭
	ClientIDHeader    = "X-Client-ID"
	maxClientIDLength = 64
)

// Scope 依請求頭取得該用戶的偏好管理器
func Scope(c *gin.Context, m *storage.Manager) (*storage.Manager, error) {
	clientID := c.GetHeader(ClientIDHeader)
	if len(clientID) > maxClientIDLength {
		return nil, common.ErrInvalidRequest.Wrap(common.NewValidationError("client id too long"))
	}
	return m.Scope(clientID), nil
}

// Response 偏好資料響應
type Response struct {
	FirstVisit bool          `json:"first_visit"`
	Data       *storage.Data `json:"data"`
}

// PeopleCountRequest 設定用餐人數
type PeopleCountRequest struct {
	PeopleCount int `json:"people_count" binding:"required"`
}

// Handler 偏好設定處理器
type Handler struct {
	manager *storage.Manager
}

// NewHandler 創建偏好設定處理器
func NewHandler(manager *storage.Manager) *Handler {
	return &Handler{manager: manager}
}

// HandleGet 讀取偏好資料，尚無資料時回傳預設值（不寫入）
func (h *Handler) HandleGet(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}

	data, err := m.GetData(c.Request.Context())
	if err != nil {
		h.storageError(c, "讀取偏好資料失敗", err)
		return
	}

	resp := Response{FirstVisit: data == nil || data.LastVisit == "", Data: data}
	if data == nil {
		resp.Data = m.DefaultData()
	}
	c.JSON(http.StatusOK, resp)
}

// HandleVisit 記錄一次造訪，回傳造訪前是否為首次造訪
func (h *Handler) HandleVisit(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}

	first, err := m.IsFirstVisit(c.Request.Context())
	if err != nil {
		h.storageError(c, "讀取偏好資料失敗", err)
		return
	}
	data, err := m.UpdateLastVisit(c.Request.Context())
	if err != nil {
		h.storageError(c, "更新造訪時間失敗", err)
		return
	}
	c.JSON(http.StatusOK, Response{FirstVisit: first, Data: data})
}

// HandleClear 刪除偏好資料
func (h *Handler) HandleClear(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}

	if err := m.ClearData(c.Request.Context()); err != nil {
		h.storageError(c, "清除偏好資料失敗", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleSetPeopleCount 設定用餐人數，超出 1 到 10 時自動修正
func (h *Handler) HandleSetPeopleCount(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}

	var req PeopleCountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteError(c, common.BindError(err))
		return
	}

	data, err := m.SetPeopleCount(c.Request.Context(), storage.ClampPeopleCount(req.PeopleCount))
	h.respond(c, data, err)
}

// HandleAddFavorite 加入收藏
func (h *Handler) HandleAddFavorite(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}
	data, err := m.AddFavoriteRecipe(c.Request.Context(), c.Param("id"))
	h.respond(c, data, err)
}

// HandleRemoveFavorite 移除收藏
func (h *Handler) HandleRemoveFavorite(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}
	data, err := m.RemoveFavoriteRecipe(c.Request.Context(), c.Param("id"))
	h.respond(c, data, err)
}

// HandleTogglePurchased 切換購買狀態
func (h *Handler) HandleTogglePurchased(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}
	data, err := m.TogglePurchased(c.Request.Context(), c.Param("name"))
	h.respond(c, data, err)
}

// HandleClearPurchased 清空購買狀態
func (h *Handler) HandleClearPurchased(c *gin.Context) {
	m, ok := h.scope(c)
	if !ok {
		return
	}
	data, err := m.ClearPurchased(c.Request.Context())
	h.respond(c, data, err)
}

func (h *Handler) scope(c *gin.Context) (*storage.Manager, bool) {
	m, err := Scope(c, h.manager)
	if err != nil {
		common.WriteError(c, err)
		return nil, false
	}
	return m, true
}

func (h *Handler) respond(c *gin.Context, data *storage.Data, err error) {
	if err != nil {
		h.storageError(c, "寫入偏好資料失敗", err)
		return
	}
	c.JSON(http.StatusOK, Response{FirstVisit: data.LastVisit == "", Data: data})
}

func (h *Handler) storageError(c *gin.Context, msg string, err error) {
	common.LogError(msg,
		zap.Error(err),
		zap.String("request_id", common.RequestID(c)),
	)
	common.WriteError(c, common.ErrStorageFailure.Wrap(err))
}

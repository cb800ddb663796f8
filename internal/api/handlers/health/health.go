package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"whattocook/internal/core/corpus"
	"whattocook/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	Corpus    *CorpusStatus          `json:"corpus,omitempty"`
}

// CorpusStatus 菜譜庫狀態
type CorpusStatus struct {
	Loaded   bool      `json:"loaded"`
	Recipes  int       `json:"recipes,omitempty"`
	Skipped  int       `json:"skipped,omitempty"`
	LoadedAt time.Time `json:"loaded_at,omitempty"`
}

// Corpus 菜譜庫
type Corpus interface {
	Snapshot(ctx context.Context) (*corpus.Snapshot, error)
	Loaded() bool
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	corpus  Corpus
}

// NewHandler 創建健康檢查處理器
func NewHandler(version string, c Corpus) *Handler {
	return &Handler{version: version, corpus: c}
}

// HealthCheck 健康檢查處理器；不觸發菜譜載入
func (h *Handler) HealthCheck(c *gin.Context) {
	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
		Corpus: &CorpusStatus{Loaded: h.corpus.Loaded()},
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查：菜譜庫可載入才算就緒
func (h *Handler) ReadinessCheck(c *gin.Context) {
	snap, err := h.corpus.Snapshot(c.Request.Context())
	if err != nil {
		common.LogWarn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"code":   common.ErrCodeCorpusUnavailable,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"corpus": CorpusStatus{
			Loaded:   true,
			Recipes:  len(snap.Recipes),
			Skipped:  snap.Skipped,
			LoadedAt: snap.LoadedAt,
		},
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

package corpus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"whattocook/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// RemoteSource 透過 HTTP 讀取遠端菜譜倉庫：先取清單，再逐一下載原文
type RemoteSource struct {
	client   *resty.Client
	baseURL  string
	manifest string
}

// NewRemoteSource 創建遠端來源；manifest 為回傳 JSON 字串陣列（文件路徑）的端點
func NewRemoteSource(baseURL, manifest string, timeout time.Duration) *RemoteSource {
	baseURL = strings.TrimRight(baseURL, "/")
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json, text/markdown, text/plain")

	return &RemoteSource{
		client:   client,
		baseURL:  baseURL,
		manifest: manifest,
	}
}

// Name 來源名稱
func (s *RemoteSource) Name() string {
	return "remote:" + s.baseURL
}

// Documents 清單讀取失敗回傳錯誤；單一文件失敗只記錄並略過
func (s *RemoteSource) Documents(ctx context.Context) ([]Document, error) {
	paths, err := s.fetchManifest(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		content, err := s.fetchDocument(ctx, p)
		if err != nil {
			common.LogWarn("下載菜譜失敗，略過",
				zap.String("path", p),
				zap.Error(err),
			)
			continue
		}
		docs = append(docs, Document{Path: normalizePath(p), Content: content})
	}
	return docs, nil
}

func (s *RemoteSource) fetchManifest(ctx context.Context) ([]string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(s.manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch corpus manifest: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("corpus manifest returned status %d", resp.StatusCode())
	}

	var paths []string
	if err := common.ParseJSONBytes(resp.Body(), &paths); err != nil {
		return nil, fmt.Errorf("failed to parse corpus manifest: %w", err)
	}
	return paths, nil
}

func (s *RemoteSource) fetchDocument(ctx context.Context, p string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		Get(escapePath(normalizePath(p)))
	if err != nil {
		return "", err
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}
	return resp.String(), nil
}

// ResolveImage 相對引用直接拼成遠端網址，不檢查是否存在
func (s *RemoteSource) ResolveImage(docPath, ref string) (string, bool) {
	if ref == "" || isAbsoluteRef(ref) {
		return "", false
	}
	return s.baseURL + escapePath(imageCandidate(docPath, ref)), true
}

// escapePath 對路徑做百分比編碼；已編碼的路徑保持不變
func escapePath(p string) string {
	if decoded, err := url.PathUnescape(p); err == nil {
		p = decoded
	}
	return (&url.URL{Path: p}).EscapedPath()
}

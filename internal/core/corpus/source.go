package corpus

import (
	"context"
	"errors"
	"path"
	"regexp"
	"slices"
	"strings"
)

// ErrNoSource 未設定任何菜譜來源
var ErrNoSource = errors.New("no corpus source configured")

// Document 一份待解析的 Markdown 原文
type Document struct {
	Path    string
	Content string
}

// Source 菜譜原文來源
type Source interface {
	// Name 來源名稱，用於日誌
	Name() string
	// Documents 讀取全部原文
	Documents(ctx context.Context) ([]Document, error)
}

// ImageResolver 將文件中的相對圖片引用轉為可存取的 URL；無法解析時回傳 false
type ImageResolver interface {
	ResolveImage(docPath, ref string) (string, bool)
}

var absoluteRefPattern = regexp.MustCompile(`^(?i:[a-z][a-z0-9+.-]*:|//)`)

// isAbsoluteRef 是否為帶 scheme 的網址或 data URI
func isAbsoluteRef(ref string) bool {
	return absoluteRefPattern.MatchString(ref)
}

// normalizePath 收合 . 與 .. 並回傳以 / 開頭的路徑
func normalizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean("/" + p)
}

// imageCandidate 由文件所在目錄與引用組出資產路徑
func imageCandidate(docPath, ref string) string {
	if strings.HasPrefix(ref, "/") {
		return normalizePath(ref)
	}
	return normalizePath(path.Dir(normalizePath(docPath)) + "/" + ref)
}

var imageExtPattern = regexp.MustCompile(`(?i)\.(png|jpg|jpeg|webp|gif)$`)

// extVariants 原樣、小寫副檔名、大寫副檔名三種寫法，去除重複
func extVariants(p string) []string {
	out := []string{p}
	loc := imageExtPattern.FindStringIndex(p)
	if loc == nil {
		return out
	}
	for _, v := range []string{
		p[:loc[0]] + strings.ToLower(p[loc[0]:]),
		p[:loc[0]] + strings.ToUpper(p[loc[0]:]),
	} {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

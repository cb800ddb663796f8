package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"path"
	"strings"
)

// DirSource 從檔案系統（通常是 os.DirFS）讀取 *.md 菜譜
type DirSource struct {
	fsys         fs.FS
	name         string
	assetBaseURL string
}

// NewDirSource 創建目錄來源；assetBaseURL 為空時不改寫圖片引用
func NewDirSource(fsys fs.FS, name, assetBaseURL string) *DirSource {
	return &DirSource{
		fsys:         fsys,
		name:         name,
		assetBaseURL: strings.TrimRight(assetBaseURL, "/"),
	}
}

// Name 來源名稱
func (s *DirSource) Name() string {
	return "dir:" + s.name
}

// Documents 遞迴讀取全部 Markdown 文件，路徑以 / 開頭
func (s *DirSource) Documents(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			// 跳過隱藏目錄，例如 .git
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(path.Ext(p), ".md") {
			return nil
		}
		data, err := fs.ReadFile(s.fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		docs = append(docs, Document{Path: normalizePath(p), Content: string(data)})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", s.name, err)
	}
	return docs, nil
}

// ResolveImage 圖片存在於資產目錄時改寫為 assetBaseURL 下的網址
func (s *DirSource) ResolveImage(docPath, ref string) (string, bool) {
	if s.assetBaseURL == "" || ref == "" || isAbsoluteRef(ref) {
		return "", false
	}

	raw := imageCandidate(docPath, ref)
	candidates := extVariants(raw)
	if decoded, err := url.PathUnescape(raw); err == nil && decoded != raw {
		candidates = append(candidates, extVariants(decoded)...)
	}

	for _, c := range candidates {
		if _, err := fs.Stat(s.fsys, strings.TrimPrefix(c, "/")); err == nil {
			return s.assetBaseURL + (&url.URL{Path: c}).EscapedPath(), true
		}
	}
	return "", false
}

package corpus

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"whattocook/internal/pkg/common"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Invalidator 接收檔案變動通知
type Invalidator interface {
	Invalidate()
}

// Watcher 監看菜譜目錄，*.md 有變動時讓快取失效
type Watcher struct {
	root    string
	target  Invalidator
	watcher *fsnotify.Watcher
}

// NewWatcher 創建監看器並註冊 root 之下的全部目錄
func NewWatcher(root string, target Invalidator) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{root: root, target: target, watcher: fw}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// addTree fsnotify 不會遞迴，需逐一加入子目錄
func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

// Run 處理事件直到 ctx 取消
func (w *Watcher) Run(ctx context.Context) {
	common.LogInfo("開始監看菜譜目錄", zap.String("root", w.root))
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			common.LogWarn("菜譜目錄監看錯誤", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// 新建的子目錄要加入監看
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				common.LogWarn("無法監看新目錄", zap.String("path", event.Name), zap.Error(err))
			}
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	common.LogDebug("菜譜文件變動",
		zap.String("path", event.Name),
		zap.String("op", event.Op.String()),
	)
	w.target.Invalidate()
}

// Close 停止監看
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

package generatexdmf

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the H5 files must stay quiet before the XDMF
// file is regenerated
const DefaultDebounce = 2 * time.Second

// Watch generates the XDMF file and regenerates it whenever a file matching
// prefix*.h5 is created or written, until ctx is done. Generation failures
// are logged and do not end the watch.
func (g *Generator) Watch(ctx context.Context, prefix, output string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(prefix)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}
	g.regenerate(ctx, prefix, output)

	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && matches(prefix, event.Name) {
				g.Logger.Debug("Volume data changed", "file", event.Name, "op", event.Op.String())
				pending = time.After(g.Debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			g.Logger.Error("Watcher error", "error", err)
		case <-pending:
			pending = nil
			g.regenerate(ctx, prefix, output)
		case <-ctx.Done():
			return nil
		}
	}
}

func (g *Generator) regenerate(ctx context.Context, prefix, output string) {
	if err := g.GenerateFromPrefix(ctx, prefix, output); err != nil {
		g.Logger.Warn("Failed to generate XDMF file", "error", err)
	}
}

func matches(prefix, name string) bool {
	return strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".h5")
}

// reload.go re-applies an options file when it changes on disk.

package raven

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce is how long after the last write a reload waits, so one
// editor save does not trigger several reconfigurations.
const reloadDebounce = 500 * time.Millisecond

// WatchOptions watches a YAML option file and reconfigures the client when
// it changes. Reload failures are logged and leave the active
// configuration untouched. Blocks until ctx is cancelled.
func (c *Client) WatchOptions(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch options: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("watch %q: %w", path, err)
	}

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(reloadDebounce, func() {
					c.reloadOptions(path)
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.logf("options watcher: %v", err)
		}
	}
}

func (c *Client) reloadOptions(path string) {
	opts, err := OptionsFromFile(path)
	if err != nil {
		c.logf("options reload failed: %v", err)
		return
	}

	c.mu.Lock()
	dsn := c.dsnString
	c.mu.Unlock()

	if err := c.Configure(dsn, opts...); err != nil {
		c.logf("options reload failed: %v", err)
		return
	}
	c.logf("options reloaded from %s", path)
}

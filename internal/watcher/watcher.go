// Package watcher feeds the ingester from a drop directory. Files directly
// under the root map to the root route (""); files in a first-level
// subdirectory map to the route named after that directory. Deeper nesting is
// ignored, matching how FolderConfig models folders as single path segments.
//
// Two modes are provided: a one-shot Scan of everything currently present,
// and a long-running Watch built on fsnotify. Both dedupe files by a
// fingerprint of path, size, and mtime so a rescan or a duplicate event does
// not double-land a file.
package watcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/zeebo/xxh3"
	"golang.org/x/sync/errgroup"

	"landingzone/internal/ingest"
)

// settleDelay is how long a file must be quiet (no further writes) before
// watch mode processes it. Copies into the drop directory are not atomic.
const settleDelay = 2 * time.Second

// extensions the ingester can parse; anything else is skipped with a log line.
var supportedExt = map[string]bool{
	".csv":  true,
	".txt":  true,
	".xlsx": true,
}

// Watcher scans or watches a drop directory and hands files to the ingester.
type Watcher struct {
	root        string
	ing         *ingest.Ingester
	concurrency int

	mu   sync.Mutex
	seen map[uint64]struct{}
}

// New returns a Watcher over root. concurrency bounds how many files are
// processed at once during a scan; values <= 0 mean 2.
func New(root string, ing *ingest.Ingester, concurrency int) *Watcher {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &Watcher{
		root:        root,
		ing:         ing,
		concurrency: concurrency,
		seen:        map[uint64]struct{}{},
	}
}

// Scan processes every supported file currently under the root and its
// first-level subdirectories. Per-file failures are logged and counted but do
// not abort the scan; the processing log records each outcome.
func (w *Watcher) Scan(ctx context.Context) error {
	type target struct {
		folder string
		path   string
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", w.root, err)
	}

	parseable := func(name string) bool {
		return !strings.HasPrefix(name, ".") && supportedExt[strings.ToLower(filepath.Ext(name))]
	}

	var targets []target
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if !e.IsDir() {
			if parseable(name) {
				targets = append(targets, target{folder: "", path: filepath.Join(w.root, name)})
			}
			continue
		}
		sub, err := os.ReadDir(filepath.Join(w.root, name))
		if err != nil {
			log.Printf("watcher: read folder %q: %v", name, err)
			continue
		}
		for _, f := range sub {
			if f.IsDir() || !parseable(f.Name()) {
				continue
			}
			targets = append(targets, target{folder: name, path: filepath.Join(w.root, name, f.Name())})
		}
	}

	var processed, failed, skipped atomic.Int64

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.concurrency)
	for _, t := range targets {
		t := t
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			switch ok, err := w.claim(t.path); {
			case err != nil:
				log.Printf("watcher: stat %s: %v", t.path, err)
				failed.Add(1)
				return nil
			case !ok:
				skipped.Add(1)
				return nil
			}
			if _, err := w.ing.ProcessFile(ctx, t.folder, t.path); err != nil {
				failed.Add(1)
				return nil
			}
			processed.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	log.Printf(
		"scan complete: root=%s files=%d processed=%d failed=%d skipped=%d",
		w.root, len(targets), processed.Load(), failed.Load(), skipped.Load(),
	)
	return nil
}

// Watch blocks, processing files as they appear, until ctx is canceled.
// A file is processed once it has been quiet for settleDelay, so partially
// copied files are not read mid-write. New first-level subdirectories are
// picked up automatically.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	defer fw.Close()

	if err := fw.Add(w.root); err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			if err := fw.Add(filepath.Join(w.root, e.Name())); err != nil {
				log.Printf("watcher: add folder %q: %v", e.Name(), err)
			}
		}
	}

	log.Printf("watching %s (settle=%s)", w.root, settleDelay)

	var (
		timerMu sync.Mutex
		timers  = map[string]*time.Timer{}
	)
	defer func() {
		timerMu.Lock()
		for _, t := range timers {
			t.Stop()
		}
		timerMu.Unlock()
	}()

	schedule := func(path string) {
		timerMu.Lock()
		defer timerMu.Unlock()
		if t, ok := timers[path]; ok {
			t.Reset(settleDelay)
			return
		}
		timers[path] = time.AfterFunc(settleDelay, func() {
			timerMu.Lock()
			delete(timers, path)
			timerMu.Unlock()
			w.handle(ctx, path)
		})
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			info, err := os.Stat(ev.Name)
			if err != nil {
				continue // removed before we could look
			}
			if info.IsDir() {
				if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == w.root {
					if err := fw.Add(ev.Name); err != nil {
						log.Printf("watcher: add folder %q: %v", ev.Name, err)
					}
				}
				continue
			}
			schedule(ev.Name)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher: %v", err)
		}
	}
}

// handle processes one settled file. Errors are logged, not returned; the
// processing log is the durable record.
func (w *Watcher) handle(ctx context.Context, path string) {
	folder, ok := w.folderFor(path)
	if !ok {
		return
	}
	switch claimed, err := w.claim(path); {
	case err != nil:
		log.Printf("watcher: stat %s: %v", path, err)
		return
	case !claimed:
		return
	}
	w.ing.ProcessFile(ctx, folder, path) // outcome already logged and audited
}

// folderFor maps an absolute path to its FolderConfig key. Unsupported
// extensions, hidden files, and files nested deeper than one level report
// not-ok.
func (w *Watcher) folderFor(path string) (string, bool) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || !supportedExt[strings.ToLower(filepath.Ext(base))] {
		return "", false
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return "", false
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return "", true
	}
	if strings.ContainsRune(dir, filepath.Separator) {
		return "", false
	}
	return dir, true
}

// claim records the file's fingerprint and reports whether this is the first
// time it has been seen. A changed size or mtime counts as a new file.
func (w *Watcher) claim(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	fp := xxh3.HashString(fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano()))

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, dup := w.seen[fp]; dup {
		return false, nil
	}
	w.seen[fp] = struct{}{}
	return true, nil
}

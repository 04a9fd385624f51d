package importer

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/contactdock/contactdock-server/internal/domain"
	domainerrors "github.com/contactdock/contactdock-server/internal/errors"
	"github.com/contactdock/contactdock-server/internal/dto"
	"github.com/contactdock/contactdock-server/internal/service"
	"github.com/contactdock/contactdock-server/internal/store"
)

// settleDelay is how long a file must stay unchanged before it is
// considered fully written.
const settleDelay = 500 * time.Millisecond

// Watcher monitors the import drop folder and runs bulk imports for CSV
// files as they appear. Each owner has a subdirectory named by user id;
// files dropped elsewhere are ignored.
type Watcher struct {
	root    string
	store   *store.Store
	imports *service.ImportService
	logger  *slog.Logger

	watcher *fsnotify.Watcher

	pending map[string]*pendingFile
	mu      sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// pendingFile tracks a file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// New creates a drop-folder watcher rooted at <dataPath>/import.
func New(dataPath string, st *store.Store, imports *service.ImportService, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		root:    filepath.Join(dataPath, "import"),
		store:   st,
		imports: imports,
		logger:  logger,
		watcher: fsw,
		pending: make(map[string]*pendingFile),
		done:    make(chan struct{}),
	}, nil
}

// Root returns the watched drop-folder root.
func (w *Watcher) Root() string {
	return w.root
}

// Start begins watching the drop folder in the background until ctx is
// canceled or Stop is called. Files already present are processed first.
func (w *Watcher) Start(ctx context.Context) error {
	if err := os.MkdirAll(w.root, 0o750); err != nil {
		return fmt.Errorf("create import root: %w", err)
	}
	if err := w.watcher.Add(w.root); err != nil {
		return fmt.Errorf("watch import root: %w", err)
	}

	entries, err := os.ReadDir(w.root)
	if err != nil {
		return fmt.Errorf("read import root: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ownerDir := filepath.Join(w.root, entry.Name())
		if err := w.watcher.Add(ownerDir); err != nil {
			w.logger.Warn("failed to watch owner import dir", "path", ownerDir, "error", err)
			continue
		}
		w.processExisting(ctx, ownerDir)
	}

	w.wg.Add(1)
	go w.loop(ctx)

	w.logger.Info("import drop folder watcher started", "root", w.root)
	return nil
}

// Stop shuts down the watcher and waits for in-flight work.
func (w *Watcher) Stop() error {
	close(w.done)

	w.mu.Lock()
	for _, p := range w.pending {
		p.timer.Stop()
	}
	clear(w.pending)
	w.mu.Unlock()

	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("import watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	path := event.Name

	// A new owner directory: start watching it.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if filepath.Dir(path) == w.root {
				if err := w.watcher.Add(path); err != nil {
					w.logger.Warn("failed to watch owner import dir", "path", path, "error", err)
				}
			}
			return
		}
	}

	if !isImportCSV(path) {
		return
	}

	if event.Op&fsnotify.Remove != 0 {
		w.cancelPending(path)
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
		w.startSettling(ctx, path)
	}
}

// startSettling debounces writes: the file is processed only once its
// size and mtime stop changing.
func (w *Watcher) startSettling(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		return
	}

	p := &pendingFile{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(settleDelay, func() {
		w.checkSettled(ctx, path)
	})
	w.pending[path] = p
}

func (w *Watcher) checkSettled(ctx context.Context, path string) {
	w.mu.Lock()
	p, exists := w.pending[path]
	if !exists {
		w.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(w.pending, path)
		w.mu.Unlock()
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		// Still being written, restart the timer.
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(settleDelay, func() {
			w.checkSettled(ctx, path)
		})
		w.mu.Unlock()
		return
	}

	delete(w.pending, path)
	w.mu.Unlock()

	if err := w.ProcessFile(ctx, path); err != nil {
		w.logger.Error("import file processing failed", "path", path, "error", err)
	}
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, exists := w.pending[path]; exists {
		p.timer.Stop()
		delete(w.pending, path)
	}
}

// processExisting imports CSV files already sitting in an owner directory.
func (w *Watcher) processExisting(ctx context.Context, ownerDir string) {
	entries, err := os.ReadDir(ownerDir)
	if err != nil {
		w.logger.Warn("failed to read owner import dir", "path", ownerDir, "error", err)
		return
	}
	for _, entry := range entries {
		path := filepath.Join(ownerDir, entry.Name())
		if entry.IsDir() || !isImportCSV(path) {
			continue
		}
		if err := w.ProcessFile(ctx, path); err != nil {
			w.logger.Error("import file processing failed", "path", path, "error", err)
		}
	}
}

// ProcessFile imports one CSV file for the owner named by its directory,
// writes a <file>.result.json report next to it, and removes the source.
func (w *Watcher) ProcessFile(ctx context.Context, path string) error {
	ownerID := filepath.Base(filepath.Dir(path))

	// Only known users get imports. Anything else is a stray directory.
	if _, err := w.store.Users.Get(ctx, ownerID); err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			w.logger.Warn("import file for unknown owner, skipping", "path", path, "owner_id", ownerID)
			return nil
		}
		return err
	}

	f, err := os.Open(path) //#nosec G304 -- Path comes from the watched drop folder
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	rows, err := ParseCSV(f)
	closeErr := f.Close()
	if err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if closeErr != nil {
		return closeErr
	}

	importRows, err := w.resolveTags(ctx, ownerID, rows)
	if err != nil {
		return err
	}

	result, err := w.imports.BulkImport(ctx, ownerID, importRows, domain.ImportSourceWatch)
	if err != nil {
		return fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}

	if err := w.writeResult(path, result); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove processed file: %w", err)
	}

	w.logger.Info("drop folder file imported",
		"path", path,
		"owner_id", ownerID,
		"success", result.SuccessCount,
		"failed", result.FailedCount,
	)
	return nil
}

// resolveTags maps tag names to the owner's tag ids. Unknown names are
// passed through as-is so the row fails tag validation with the offending
// name in the error message.
func (w *Watcher) resolveTags(ctx context.Context, ownerID string, rows []Row) ([]domain.ImportRow, error) {
	resolved := make(map[string]string)

	out := make([]domain.ImportRow, 0, len(rows))
	for _, row := range rows {
		ir := row.ImportRow
		for _, tagName := range row.TagNames {
			key := strings.ToLower(tagName)
			tagID, ok := resolved[key]
			if !ok {
				tag, err := w.store.GetTagByName(ctx, ownerID, tagName)
				switch {
				case err == nil:
					tagID = tag.ID
				case domainerrors.Is(err, store.ErrTagNotFound):
					tagID = tagName
				default:
					return nil, err
				}
				resolved[key] = tagID
			}
			ir.TagIDs = append(ir.TagIDs, tagID)
		}
		out = append(out, ir)
	}
	return out, nil
}

func (w *Watcher) writeResult(path string, result *domain.ImportResult) error {
	data, err := json.Marshal(dto.FromImportResult(result))
	if err != nil {
		return fmt.Errorf("marshal import result: %w", err)
	}
	resultPath := path + ".result.json"
	if err := os.WriteFile(resultPath, data, 0o640); err != nil {
		return fmt.Errorf("write import result: %w", err)
	}
	return nil
}

func isImportCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}

package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/script-runtime/errors"
	"github.com/wippyai/script-runtime/jobs"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher observes a script root and delivers coalesced change batches
// to the owner goroutine through a job queue.
type Watcher struct {
	root     string
	queue    *jobs.Queue
	apply    func(ids []string)
	debounce time.Duration

	fw        *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Options configures a Watcher. Root, Queue, and Apply are required.
type Options struct {
	// Root is the directory to watch recursively. Event paths are
	// reported as ids relative to it.
	Root string

	// Queue receives one flush job per change batch.
	Queue *jobs.Queue

	// Apply is invoked on the owner goroutine with the batch of changed
	// ids, typically Runtime.MarkChanged.
	Apply func(ids []string)

	// Debounce is the coalescing window. Defaults to 100ms.
	Debounce time.Duration
}

// New creates a watcher; call Start to begin observing.
func New(opts Options) *Watcher {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{
		root:     opts.Root,
		queue:    opts.Queue,
		apply:    opts.Apply,
		debounce: debounce,
		done:     make(chan struct{}),
	}
}

// Start registers the root tree and launches the event loop.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WatchFailure("cannot create watcher", err)
	}
	w.fw = fw

	if err := w.addTree(w.root); err != nil {
		fw.Close()
		return err
	}

	w.wg.Add(1)
	go w.loop()

	Logger().Debug("watching", zap.String("root", w.root))
	return nil
}

// Close stops the event loop. Safe to call more than once;
// already-posted flush jobs stay on the queue.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.WatchFailure("cannot walk "+path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fw.Add(path); err != nil {
			return errors.WatchFailure("cannot watch "+path, err)
		}
		return nil
	})
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	pending := make(map[string]struct{})
	var timerC <-chan time.Time

	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if w.collect(ev, pending) && timerC == nil {
				timerC = time.After(w.debounce)
			}

		case <-timerC:
			timerC = nil
			w.flush(pending)
			pending = make(map[string]struct{})

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			Logger().Warn("watch error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

// collect folds one event into the pending set and reports whether the
// set grew. Directory creation extends the watch instead.
func (w *Watcher) collect(ev fsnotify.Event, pending map[string]struct{}) bool {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				Logger().Warn("cannot watch new directory", zap.String("dir", ev.Name), zap.Error(err))
			}
			return false
		}
	}
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	id := filepath.ToSlash(rel)

	before := len(pending)
	pending[id] = struct{}{}
	return len(pending) > before
}

func (w *Watcher) flush(pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}
	ids := make([]string, 0, len(pending))
	for id := range pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	if err := w.queue.Post(func() { w.apply(ids) }); err != nil {
		Logger().Warn("cannot post change batch", zap.Error(err))
		return
	}
	Logger().Debug("change batch posted", zap.Strings("ids", ids))
}

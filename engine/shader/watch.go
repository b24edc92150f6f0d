package shader

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/hubastard/forge/engine/errs"
	"github.com/hubastard/forge/engine/logx"
)

// Watcher reports shader files that changed on disk. The parent directories
// are watched rather than the files, so editors that save by rename are
// picked up too.
type Watcher struct {
	fw     *fsnotify.Watcher
	files  map[string]bool
	events chan string
	log    *slog.Logger

	once sync.Once
	done chan struct{}
}

// Watch starts watching the given shader files.
func Watch(logger *slog.Logger, paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errs.Wrap(errs.SystemInitFailed, "shader.Watch", err)
	}
	w := &Watcher{
		fw:     fw,
		files:  make(map[string]bool, len(paths)),
		events: make(chan string, 16),
		log:    logx.Or(logger),
		done:   make(chan struct{}),
	}

	dirs := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, errs.Wrap(errs.InvalidFilePath, "shader.Watch", err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for d := range dirs {
		if err := fw.Add(d); err != nil {
			fw.Close()
			return nil, &errs.Error{Code: errs.FileNotFound, Op: "shader.Watch", Path: d, Err: err}
		}
	}

	go w.loop()
	return w, nil
}

// Changes delivers the absolute path of every watched file that was written
// or replaced. A burst of events for one file may arrive as several sends;
// if the receiver falls behind, sends are dropped rather than blocking.
func (w *Watcher) Changes() <-chan string { return w.events }

// Poll takes one pending change without blocking. closed reports that the
// watcher has stopped and will send nothing more.
func (w *Watcher) Poll() (path string, changed, closed bool) {
	select {
	case p, ok := <-w.events:
		return p, ok, !ok
	default:
		return "", false, false
	}
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if !w.files[path] {
				continue
			}
			logx.Trace(w.log, "shader file changed", "path", path, "op", ev.Op.String())
			select {
			case w.events <- path:
			default:
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("shader watcher error", "err", err)
		}
	}
}

// Close stops the watcher and closes the Changes channel.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}

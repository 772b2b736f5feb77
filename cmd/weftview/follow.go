package main

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/juju/errors"

	"github.com/dshills/weft/buffer"
)

// eventReload is posted to the screen's event queue after the follower
// applies an edit, so the viewer repaints and recomputes search matches.
type eventReload struct {
	tcell.EventTime
}

func newEventReload() *eventReload {
	ev := &eventReload{}
	ev.SetEventNow()
	return ev
}

// follower watches one file and feeds external changes into the buffer as
// incremental edits. It watches the parent directory rather than the file:
// editors that save by rename would otherwise detach the watch.
type follower struct {
	buf     *buffer.Buffer
	path    string
	log     *Logger
	screen  tcell.Screen
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newFollower(buf *buffer.Buffer, path string, screen tcell.Screen, log *Logger) (*follower, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Trace(err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, errors.Annotatef(err, "watching %s", filepath.Dir(abs))
	}

	f := &follower{
		buf:     buf,
		path:    abs,
		log:     log,
		screen:  screen,
		watcher: w,
		done:    make(chan struct{}),
	}
	go f.loop()
	return f, nil
}

// Close stops the watcher. Safe to call more than once.
func (f *follower) Close() {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
	f.watcher.Close()
}

func (f *follower) loop() {
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			f.reload()
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.log.Error("watch error: %v", err)
		}
	}
}

// reload diffs the file against the buffer and applies the difference as
// a single edit, so overlays and history track the external change.
func (f *follower) reload() {
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.log.Warn("rereading %s: %v", f.path, err)
		return
	}
	if !utf8.Valid(data) {
		f.log.Warn("ignoring %s: not valid UTF-8", f.path)
		return
	}

	old := f.buf.Text()
	next := newlinesToLF(string(data))
	start, end, text := diffEdit(old, next)
	if start == end && text == "" {
		return
	}

	res, err := f.buf.ApplyEdit(buffer.NewEdit(buffer.Range{Start: start, End: end}, text))
	if err != nil {
		f.log.Error("applying follow edit: %v", err)
		return
	}
	f.log.Debug("follow edit %v -> %v (delta %d)", res.OldRange, res.NewRange, res.Delta)

	if err := f.screen.PostEvent(newEventReload()); err != nil {
		f.log.Debug("event queue full, dropping reload")
	}
}

// newlinesToLF rewrites CRLF and lone CR line endings as LF, matching the
// buffer's internal form so the diff below sees only real changes.
func newlinesToLF(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// diffEdit reduces old -> next to one replacement by trimming the common
// prefix and suffix. The cut points land on rune starts so the replacement
// text is always valid UTF-8 on its own.
func diffEdit(old, next string) (start, end int, text string) {
	p := 0
	for p < len(old) && p < len(next) && old[p] == next[p] {
		p++
	}
	for p > 0 && p < len(next) && !utf8.RuneStart(next[p]) {
		p--
	}

	s := 0
	for s < len(old)-p && s < len(next)-p && old[len(old)-1-s] == next[len(next)-1-s] {
		s++
	}
	for s > 0 && !utf8.RuneStart(next[len(next)-s]) {
		s--
	}

	return p, len(old) - s, next[p : len(next)-s]
}

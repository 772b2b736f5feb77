package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/dshills/weft/buffer"
	"github.com/dshills/weft/spans"
)

// viewer is the full-screen pager. It owns the terminal; the follower
// mutates the buffer from its own goroutine and posts reload events, so
// every frame renders from a snapshot.
type viewer struct {
	screen tcell.Screen
	buf    *buffer.Buffer
	log    *Logger
	styles styleSet
	name   string
	follow bool

	tabWidth int
	wrap     bool

	top    int // first visible document line
	left   int // horizontal scroll in columns, unused when wrapping
	cursor int // byte offset anchoring word jumps and search

	status string

	searching bool
	input     []rune
	re        *regexp.Regexp
	matches   []spans.Range
	current   int
}

func newViewer(screen tcell.Screen, buf *buffer.Buffer, styles styleSet, name string, cfg Config, follow bool, log *Logger) *viewer {
	return &viewer{
		screen:   screen,
		buf:      buf,
		log:      log,
		styles:   styles,
		name:     name,
		follow:   follow,
		tabWidth: cfg.TabWidth,
		wrap:     cfg.Wrap,
		current:  -1,
	}
}

// run drives the event loop until the user quits.
func (v *viewer) run() error {
	for {
		v.render()
		switch ev := v.screen.PollEvent().(type) {
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventInterrupt:
			return nil
		case *eventReload:
			v.reloaded()
		case *tcell.EventKey:
			if v.searching {
				v.promptKey(ev)
				continue
			}
			if v.handleKey(ev) {
				return nil
			}
		case nil:
			return nil
		}
	}
}

// reloaded reconciles viewer state after the follower applied an edit.
func (v *viewer) reloaded() {
	if n := v.buf.Len(); v.cursor > n {
		v.cursor = n
	}
	v.refreshSearch()
	v.status = ""
}

func (v *viewer) pageRows() int {
	_, h := v.screen.Size()
	if h <= 1 {
		return 1
	}
	return h - 1
}

func (v *viewer) maxTop(lineCount int) int {
	top := lineCount - v.pageRows()
	if top < 0 {
		return 0
	}
	return top
}

func (v *viewer) render() {
	v.screen.Clear()
	snap := v.buf.Snapshot()
	w, h := v.screen.Size()
	rows := h - 1
	lineCount := snap.LineCount()

	if v.top > v.maxTop(lineCount) {
		v.top = v.maxTop(lineCount)
	}
	if v.top < 0 {
		v.top = 0
	}

	hl, hasHL := v.highlight(snap)
	gutter := gutterWidth(lineCount)

	line := v.top
	for y := 0; y < rows && line < lineCount; line++ {
		y += v.drawLine(snap, y, rows-1, line, gutter, w, hl, hasHL)
	}

	v.drawStatus(snap, w, h-1, lineCount, line)
	v.placeCursor(snap, gutter, w, rows)
	v.screen.Show()
}

// highlight merges the two search overlays into one role map for styling.
func (v *viewer) highlight(snap *buffer.Snapshot) (spans.Spans[uint32], bool) {
	m, ok := snap.Overlay(overlayMatches)
	if !ok {
		return spans.Spans[uint32]{}, false
	}
	c, ok := snap.Overlay(overlayCurrent)
	if !ok {
		return m, true
	}
	return combineHighlights(m, c), true
}

func (v *viewer) cellStyle(off int, hl spans.Spans[uint32], hasHL bool) tcell.Style {
	if !hasHL {
		return v.styles.text
	}
	role, ok := hl.DataAt(off)
	if !ok {
		return v.styles.text
	}
	if role == roleCurrentMatch {
		return v.styles.currentMatch
	}
	return v.styles.match
}

// gutterWidth returns the line-number gutter width including the
// separating space.
func gutterWidth(lineCount int) int {
	return len(strconv.Itoa(lineCount)) + 2
}

// drawLine renders one document line starting at row y. With wrap on it
// may consume rows up to maxY; the return value is the number of rows
// used (at least 1).
func (v *viewer) drawLine(snap *buffer.Snapshot, y, maxY, line, gutter, width int, hl spans.Spans[uint32], hasHL bool) int {
	num := strconv.Itoa(line + 1)
	nx := gutter - 1 - len(num)
	for i, r := range num {
		v.screen.SetContent(nx+i, y, r, nil, v.styles.lineNumber)
	}

	start, _ := snap.LineRange(line)
	text := snap.LineText(line)

	rows := 1
	x := gutter
	col := 0
	off := start
	state := -1
	for len(text) > 0 {
		cluster, rest, _, next := uniseg.FirstGraphemeClusterInString(text, state)
		state = next
		text = rest

		st := v.cellStyle(off, hl, hasHL)
		if v.wrap {
			w := v.clusterWidth(cluster, x-gutter)
			if x+w > width && x > gutter {
				y++
				rows++
				x = gutter
				w = v.clusterWidth(cluster, 0)
			}
			if y > maxY {
				return rows - 1
			}
			if w > 0 {
				v.drawCluster(x, y, w, cluster, st)
				x += w
			}
		} else {
			w := v.clusterWidth(cluster, col)
			if w > 0 && col >= v.left {
				sx := gutter + col - v.left
				if sx+w > width {
					break
				}
				v.drawCluster(sx, y, w, cluster, st)
			}
			col += w
		}
		off += len(cluster)
	}
	return rows
}

// clusterWidth measures a cluster's display width at a column, expanding
// tabs to the next stop.
func (v *viewer) clusterWidth(cluster string, col int) int {
	if cluster == "\t" {
		return v.tabWidth - col%v.tabWidth
	}
	return runewidth.StringWidth(cluster)
}

// drawCluster puts one grapheme cluster into the cell at (x, y). tcell
// takes the base rune plus combining runes and owns wide-cell spill.
// Tabs paint w styled blanks.
func (v *viewer) drawCluster(x, y, w int, cluster string, st tcell.Style) {
	if cluster == "\t" {
		for i := 0; i < w; i++ {
			v.screen.SetContent(x+i, y, ' ', nil, st)
		}
		return
	}
	rs := []rune(cluster)
	v.screen.SetContent(x, y, rs[0], rs[1:], st)
}

func (v *viewer) drawStatus(snap *buffer.Snapshot, width, y, lineCount, bottomLine int) {
	if y < 0 {
		return
	}

	var left string
	switch {
	case v.searching:
		left = "/" + string(v.input)
	case v.status != "":
		left = v.status
	default:
		name := v.name
		if name == "" {
			name = "(stdin)"
		}
		if v.follow {
			name += " (follow)"
		}
		left = name
	}

	percent := 100
	if lineCount > 0 {
		percent = bottomLine * 100 / lineCount
	}
	right := fmt.Sprintf("%d/%d %3d%%", v.top+1, lineCount, percent)
	if len(v.matches) > 0 && !v.searching {
		right = fmt.Sprintf("match %d/%d  %s", v.current+1, len(v.matches), right)
	}

	line := left
	if pad := width - runewidth.StringWidth(left) - runewidth.StringWidth(right); pad > 0 {
		line += strings.Repeat(" ", pad) + right
	}

	x := 0
	state := -1
	for len(line) > 0 && x < width {
		cluster, rest, _, next := uniseg.FirstGraphemeClusterInString(line, state)
		state = next
		line = rest
		w := runewidth.StringWidth(cluster)
		if w <= 0 {
			continue
		}
		v.drawCluster(x, y, w, cluster, v.styles.statusBar)
		x += w
	}
	for ; x < width; x++ {
		v.screen.SetContent(x, y, ' ', nil, v.styles.statusBar)
	}
}

// placeCursor shows the terminal cursor at the prompt while searching, at
// the tracked byte offset when it is on screen, and hides it otherwise.
func (v *viewer) placeCursor(snap *buffer.Snapshot, gutter, width, rows int) {
	if v.searching {
		v.screen.ShowCursor(1+runewidth.StringWidth(string(v.input)), rows)
		return
	}
	if v.wrap {
		v.screen.HideCursor()
		return
	}
	p := snap.OffsetToPoint(v.cursor)
	if p.Line < v.top || p.Line >= v.top+rows {
		v.screen.HideCursor()
		return
	}
	col := v.displayCol(snap, p.Line, v.cursor)
	sx := gutter + col - v.left
	if sx < gutter || sx >= width {
		v.screen.HideCursor()
		return
	}
	v.screen.ShowCursor(sx, p.Line-v.top)
}

// displayCol measures the column of a byte offset within its line,
// expanding tabs.
func (v *viewer) displayCol(snap *buffer.Snapshot, line, offset int) int {
	start, _ := snap.LineRange(line)
	text := snap.LineText(line)
	col := 0
	off := start
	state := -1
	for len(text) > 0 && off < offset {
		cluster, rest, _, next := uniseg.FirstGraphemeClusterInString(text, state)
		state = next
		text = rest
		col += v.clusterWidth(cluster, col)
		off += len(cluster)
	}
	return col
}

// handleKey processes one key in normal mode. Returns true to quit.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	rows := v.pageRows()
	switch ev.Key() {
	case tcell.KeyCtrlC:
		return true
	case tcell.KeyEscape:
		v.status = ""
	case tcell.KeyUp:
		v.top--
	case tcell.KeyDown:
		v.top++
	case tcell.KeyLeft:
		v.scrollLeft()
	case tcell.KeyRight:
		v.left += 4
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		v.top -= rows
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		v.top += rows
	case tcell.KeyHome:
		v.top = 0
		v.left = 0
	case tcell.KeyEnd:
		v.top = v.maxTop(v.buf.LineCount())
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return true
		case 'j':
			v.top++
		case 'k':
			v.top--
		case 'h':
			v.scrollLeft()
		case 'l':
			v.left += 4
		case ' ':
			v.top += rows
		case 'g':
			v.top = 0
		case 'G':
			v.top = v.maxTop(v.buf.LineCount())
		case 'w':
			v.wordForward()
		case 'b':
			v.wordBack()
		case '/':
			v.searching = true
			v.input = v.input[:0]
		case 'n':
			v.jumpMatch(1)
		case 'N':
			v.jumpMatch(-1)
		}
	}
	return false
}

func (v *viewer) scrollLeft() {
	v.left -= 4
	if v.left < 0 {
		v.left = 0
	}
}

// promptKey processes one key while the search prompt is open.
func (v *viewer) promptKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		v.searching = false
	case tcell.KeyEnter:
		v.searching = false
		if pat := string(v.input); pat != "" {
			v.runSearch(pat)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(v.input) > 0 {
			v.input = v.input[:len(v.input)-1]
		}
	case tcell.KeyRune:
		v.input = append(v.input, ev.Rune())
	}
}

func (v *viewer) runSearch(pattern string) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		v.status = fmt.Sprintf("bad pattern: %v", err)
		return
	}
	v.re = re
	v.current = -1
	v.refreshSearch()
	if len(v.matches) == 0 {
		v.status = fmt.Sprintf("no matches for /%s", pattern)
		return
	}
	v.status = ""
	v.setCurrent(nextMatch(v.matches, v.cursor))
	v.log.Info("search /%s: %d matches", pattern, len(v.matches))
}

// refreshSearch recomputes matches against the live buffer and reinstalls
// both overlays. Called after a new pattern and after follow edits.
func (v *viewer) refreshSearch() {
	if v.re == nil {
		return
	}
	snap := v.buf.Snapshot()
	v.matches = findMatches(snap, v.re)
	if v.current >= len(v.matches) {
		v.current = len(v.matches) - 1
	}
	if err := v.buf.SetOverlay(overlayMatches, matchSpans(snap.Len(), v.matches)); err != nil {
		v.log.Debug("match overlay: %v", err)
	}
	v.applyCurrentOverlay(snap.Len())
}

func (v *viewer) applyCurrentOverlay(length int) {
	if v.current < 0 || v.current >= len(v.matches) {
		v.buf.RemoveOverlay(overlayCurrent)
		return
	}
	m := v.matches[v.current]
	if m.End > length {
		return
	}
	if err := v.buf.SetOverlay(overlayCurrent, currentSpans(length, m)); err != nil {
		v.log.Debug("current overlay: %v", err)
	}
}

func (v *viewer) setCurrent(i int) {
	v.current = i
	v.applyCurrentOverlay(v.buf.Len())
	if i >= 0 && i < len(v.matches) {
		v.cursor = v.matches[i].Start
		v.scrollToOffset(v.cursor)
	}
}

func (v *viewer) jumpMatch(dir int) {
	if len(v.matches) == 0 {
		v.status = "no matches"
		return
	}
	i := v.current
	switch {
	case i >= 0 && dir > 0:
		i = (i + 1) % len(v.matches)
	case i >= 0:
		i = (i - 1 + len(v.matches)) % len(v.matches)
	case dir > 0:
		i = nextMatch(v.matches, v.cursor)
	default:
		i = prevMatch(v.matches, v.cursor)
	}
	v.setCurrent(i)
}

// wordForward moves the cursor to the next word start after it.
func (v *viewer) wordForward() {
	snap := v.buf.Snapshot()
	r := snap.Rope()
	if v.cursor >= r.Len() {
		v.cursor = r.Len()
		return
	}
	it := r.Words(v.cursor, r.Len())
	for it.Next() {
		if it.Start() > v.cursor && strings.TrimSpace(it.Value()) != "" {
			v.cursor = it.Start()
			v.scrollToOffset(v.cursor)
			return
		}
	}
}

// wordBack moves the cursor to the previous word start, scanning lines
// backward so the walk is bounded by line length, not document length.
func (v *viewer) wordBack() {
	snap := v.buf.Snapshot()
	r := snap.Rope()
	if v.cursor > r.Len() {
		v.cursor = r.Len()
	}
	for line := r.LineIndex(v.cursor); line >= 0; line-- {
		lo, hi := r.LineRange(line)
		if hi > v.cursor {
			hi = v.cursor
		}
		if hi <= lo {
			continue
		}
		best := -1
		it := r.Words(lo, hi)
		for it.Next() {
			if it.Start() < v.cursor && strings.TrimSpace(it.Value()) != "" {
				best = it.Start()
			}
		}
		if best >= 0 {
			v.cursor = best
			v.scrollToOffset(v.cursor)
			return
		}
	}
}

func (v *viewer) scrollToOffset(off int) {
	p := v.buf.OffsetToPoint(off)
	rows := v.pageRows()
	if p.Line < v.top {
		v.top = p.Line
	}
	if p.Line >= v.top+rows {
		v.top = p.Line - rows + 1
	}
}

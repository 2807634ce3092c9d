package main

import (
	"fmt"
	"strings"

	"github.com/mathiasusvendsendmjx/chat-gpt-fuck-rundt/flow"
)

// TitleSetter is the window title. *platform.Window implements it.
type TitleSetter interface {
	SetTitle(title string)
}

// titleOverlay renders the flow screens into the window title.
type titleOverlay struct {
	win    TitleSetter
	base   string
	screen flow.Screen
	pct    int
	stats  string
	lines  []string
}

func newTitleOverlay(win TitleSetter, base string) *titleOverlay {
	return &titleOverlay{win: win, base: base}
}

func (o *titleOverlay) ShowOnly(s flow.Screen) {
	o.screen = s
	o.render()
}

func (o *titleOverlay) SetProgress(pct int) {
	o.pct = pct
	if o.screen == flow.ScreenLoading {
		o.render()
	}
}

// SetStats shows the last scene pass counters after the screen text.
func (o *titleOverlay) SetStats(objects, triangles, culled int) {
	stats := fmt.Sprintf("%d objects, %d tris, %d culled", objects, triangles, culled)
	if stats == o.stats {
		return
	}
	o.stats = stats
	o.render()
}

func (o *titleOverlay) addLine(format string, args ...interface{}) {
	o.lines = append(o.lines, fmt.Sprintf(format, args...))
}

func (o *titleOverlay) text() string {
	o.lines = o.lines[:0]
	o.addLine("%s", o.base)
	switch o.screen {
	case flow.ScreenStart:
		o.addLine("click or press Enter to start")
	case flow.ScreenLoading:
		o.addLine("loading %d%%", o.pct)
	case flow.ScreenControls:
		o.addLine("WASD to move, mouse to look, click to interact")
		o.addLine("click to continue")
	case flow.ScreenResume:
		o.addLine("paused, click to resume")
	}
	if o.stats != "" {
		o.addLine("%s", o.stats)
	}
	return strings.Join(o.lines, " | ")
}

func (o *titleOverlay) render() {
	o.win.SetTitle(o.text())
}

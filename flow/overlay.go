package flow

// Screen is one overlay page.
type Screen int

const (
	ScreenNone Screen = iota
	ScreenStart
	ScreenLoading
	ScreenControls
	ScreenResume
)

func (s Screen) String() string {
	switch s {
	case ScreenNone:
		return "none"
	case ScreenStart:
		return "start"
	case ScreenLoading:
		return "loading"
	case ScreenControls:
		return "controls"
	case ScreenResume:
		return "resume"
	}
	return "unknown"
}

// Overlay shows the screens over the 3D view.
type Overlay interface {
	// ShowOnly hides every screen but s. ScreenNone hides them all.
	ShowOnly(s Screen)
	SetProgress(pct int)
}

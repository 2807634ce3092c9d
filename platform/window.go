package platform

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	locked bool

	onResize func(width, height int)
	onButton func(button int, pressed bool)
	onKey    func(key int, pressed bool)
	onLock   func(locked bool)
	onFocus  func(focused bool)
}

type WindowConfig struct {
	Width      int
	Height     int
	Title      string
	Resizable  bool
	VSync      bool
	Fullscreen bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "rundt",
		Resizable: true,
		VSync:     true,
	}
}

// NewWindow creates a window with a current OpenGL 4.1 core context.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	monitor := (*glfw.Monitor)(nil)
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	w := &Window{
		Handle: handle,
		Title:  config.Title,
	}
	w.Width, w.Height = handle.GetFramebufferSize()

	handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.Width = width
		w.Height = height
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	handle.SetMouseButtonCallback(func(_ *glfw.Window, b glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		if w.onButton != nil && action != glfw.Repeat {
			w.onButton(int(b), action == glfw.Press)
		}
	})
	handle.SetKeyCallback(func(_ *glfw.Window, k glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if action == glfw.Repeat {
			return
		}
		// Escape always releases the pointer, like a browser does.
		if k == glfw.KeyEscape && action == glfw.Press && w.locked {
			w.UnlockPointer()
		}
		if w.onKey != nil {
			w.onKey(int(k), action == glfw.Press)
		}
	})
	handle.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if !focused && w.locked {
			w.UnlockPointer()
		}
		if w.onFocus != nil {
			w.onFocus(focused)
		}
	})

	return w, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

func (w *Window) IsKeyPressed(key int) bool {
	return w.Handle.GetKey(glfw.Key(key)) == glfw.Press
}

func (w *Window) IsMouseButtonPressed(button int) bool {
	return w.Handle.GetMouseButton(glfw.MouseButton(button)) == glfw.Press
}

// ── Pointer lock ──────────────────────────────────────────────────────────────

// LockPointer hides and captures the cursor (first-person look).
func (w *Window) LockPointer() {
	if w.locked {
		return
	}
	w.Handle.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	if glfw.RawMouseMotionSupported() {
		w.Handle.SetInputMode(glfw.RawMouseMotion, glfw.True)
	}
	w.locked = true
	if w.onLock != nil {
		w.onLock(true)
	}
}

func (w *Window) UnlockPointer() {
	if !w.locked {
		return
	}
	w.Handle.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	w.locked = false
	if w.onLock != nil {
		w.onLock(false)
	}
}

func (w *Window) IsPointerLocked() bool {
	return w.locked
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

func (w *Window) OnResize(cb func(width, height int))             { w.onResize = cb }
func (w *Window) OnMouseButton(cb func(button int, pressed bool)) { w.onButton = cb }
func (w *Window) OnKey(cb func(key int, pressed bool))            { w.onKey = cb }
func (w *Window) OnPointerLock(cb func(locked bool))              { w.onLock = cb }
func (w *Window) OnFocus(cb func(focused bool))                   { w.onFocus = cb }

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

const (
	MouseLeft  = int(glfw.MouseButtonLeft)
	MouseRight = int(glfw.MouseButtonRight)
)

const (
	KeySpace      = int(glfw.KeySpace)
	KeyA          = int(glfw.KeyA)
	KeyD          = int(glfw.KeyD)
	KeyS          = int(glfw.KeyS)
	KeyW          = int(glfw.KeyW)
	KeyUp         = int(glfw.KeyUp)
	KeyDown       = int(glfw.KeyDown)
	KeyLeft       = int(glfw.KeyLeft)
	KeyRight      = int(glfw.KeyRight)
	KeyEscape     = int(glfw.KeyEscape)
	KeyEnter      = int(glfw.KeyEnter)
	KeyLeftShift  = int(glfw.KeyLeftShift)
	KeyRightShift = int(glfw.KeyRightShift)
	Key1          = int(glfw.Key1)
	Key9          = int(glfw.Key9)
)

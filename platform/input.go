package platform

// InputSource is what the input manager polls each frame. *Window satisfies it.
type InputSource interface {
	GetCursorPos() (float64, float64)
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
}

// InputManager tracks mouse and keyboard state with per-frame edge detection.
type InputManager struct {
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64

	mouseButtons     [8]bool
	mouseButtonsPrev [8]bool

	keys     [512]bool
	keysPrev [512]bool

	ShiftDown bool

	source     InputSource
	firstFrame bool
}

// polledKeys are the keys the walk uses.
var polledKeys = []int{
	KeyW, KeyA, KeyS, KeyD,
	KeyUp, KeyDown, KeyLeft, KeyRight,
	KeySpace, KeyEnter, KeyEscape,
}

func NewInputManager(source InputSource) *InputManager {
	return &InputManager{
		source:     source,
		firstFrame: true,
	}
}

// Update should be called once per frame to compute deltas and poll state.
func (im *InputManager) Update() {
	x, y := im.source.GetCursorPos()
	if im.firstFrame {
		im.lastMouseX = x
		im.lastMouseY = y
		im.firstFrame = false
	}
	im.MouseDeltaX = x - im.lastMouseX
	im.MouseDeltaY = y - im.lastMouseY
	im.lastMouseX = x
	im.lastMouseY = y
	im.MouseX = x
	im.MouseY = y

	copy(im.mouseButtonsPrev[:], im.mouseButtons[:])
	copy(im.keysPrev[:], im.keys[:])

	im.mouseButtons[MouseLeft] = im.source.IsMouseButtonPressed(MouseLeft)
	im.mouseButtons[MouseRight] = im.source.IsMouseButtonPressed(MouseRight)

	im.ShiftDown = im.source.IsKeyPressed(KeyLeftShift) || im.source.IsKeyPressed(KeyRightShift)
	for _, k := range polledKeys {
		if k >= 0 && k < len(im.keys) {
			im.keys[k] = im.source.IsKeyPressed(k)
		}
	}
}

// ResetMouse drops the accumulated delta, e.g. right after pointer lock
// changes so the camera does not jump.
func (im *InputManager) ResetMouse() {
	im.firstFrame = true
	im.MouseDeltaX, im.MouseDeltaY = 0, 0
}

func (im *InputManager) IsMouseDown(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button]
}

func (im *InputManager) IsMousePressed(button int) bool {
	if button < 0 || button >= len(im.mouseButtons) {
		return false
	}
	return im.mouseButtons[button] && !im.mouseButtonsPrev[button]
}

func (im *InputManager) IsKeyDown(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key]
}

func (im *InputManager) IsKeyPressed(key int) bool {
	if key < 0 || key >= len(im.keys) {
		return false
	}
	return im.keys[key] && !im.keysPrev[key]
}

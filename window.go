package magiclight

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// WindowState wraps the single shared GLFW window.
type WindowState struct {
	window *glfw.Window
	Width  int
	Height int
	Title  string
}

func (ws *WindowState) Window() *glfw.Window { return ws.window }

func (ws *WindowState) ShouldClose() bool { return ws.window.ShouldClose() }

func (ws *WindowState) PollEvents() { glfw.PollEvents() }

func (ws *WindowState) Close() {
	if ws.window != nil {
		ws.window.Destroy()
		ws.window = nil
	}
	glfw.Terminate()
}

// PlatformWindowModule creates the shared window resource. Install is
// idempotent so multiple modules can declare the dependency.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "magiclight"
	}
	return &PlatformWindowModule{Width: width, Height: height, Title: title}
}

func (m PlatformWindowModule) Install(app *App) {
	if app.windowState() != nil {
		return
	}
	app.AddResources(createWindowState(m.Width, m.Height, m.Title))
}

func createWindowState(width, height int, title string) *WindowState {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(err)
	}

	// No OpenGL context; the surface is driven through wgpu.
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		panic(err)
	}
	return &WindowState{
		window: win,
		Width:  width,
		Height: height,
		Title:  title,
	}
}

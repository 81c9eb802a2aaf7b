// Package debugui provides a Dear ImGui overlay for inspecting the frame
// clock while the game runs.
package debugui

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
)

// InputState tracks whether Dear ImGui is consuming mouse or keyboard input
// this frame. Hosts skip feeding those devices to the game while it is.
type InputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// Overlay wraps the Ebiten backend and the windows it renders each frame.
type Overlay struct {
	backend *ebitenbackend.EbitenBackend
	items   []func()
	input   InputState
}

// NewOverlay creates the backend and its window. The backend owns the ebiten
// window, so hosts must not size it themselves when an overlay is in use.
func NewOverlay(title string, width, height int) *Overlay {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")
	return &Overlay{backend: backend}
}

// Add registers a render function called between BeginFrame and EndFrame.
func (o *Overlay) Add(render func()) {
	o.items = append(o.items, render)
}

// Update builds this frame's widgets. Call it once from ebiten's Update.
func (o *Overlay) Update() {
	o.backend.BeginFrame()
	o.input.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	o.input.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()
	for _, render := range o.items {
		render()
	}
	o.backend.EndFrame()
}

// InputState returns the capture state recorded by the last Update.
func (o *Overlay) InputState() InputState {
	return o.input
}

// Draw paints the overlay on top of screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	o.backend.Draw(screen)
}

// Layout forwards the window size to the backend.
func (o *Overlay) Layout(outsideWidth, outsideHeight int) {
	o.backend.Layout(outsideWidth, outsideHeight)
}

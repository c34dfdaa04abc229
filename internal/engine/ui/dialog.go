package ui

import (
	"github.com/sqweek/dialog"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-shadows/internal/logger"
)

// MeshPicker shows a native file dialog for glTF files. The dialog runs on
// its own goroutine; the chosen path is collected on the render thread with Poll.
type MeshPicker struct {
	picked chan string
	open   bool
}

// NewMeshPicker returns an idle picker.
func NewMeshPicker() *MeshPicker {
	return &MeshPicker{picked: make(chan string, 1)}
}

// Open shows the dialog unless one is already showing.
func (p *MeshPicker) Open() {
	if p.open {
		return
	}
	p.open = true

	go func() {
		filename, err := dialog.File().
			Filter("glTF Models", "gltf", "glb").
			Filter("All Files", "*").
			Title("Open Shadow Casters").
			Load()
		if err != nil {
			if err != dialog.ErrCancelled {
				logger.Warn("mesh dialog failed", zap.Error(err))
			}
			filename = ""
		}
		p.picked <- filename
	}()
}

// Poll returns the chosen path once the dialog closed. An empty path with
// ok set means the dialog was cancelled.
func (p *MeshPicker) Poll() (path string, ok bool) {
	select {
	case path = <-p.picked:
		p.open = false
		return path, true
	default:
		return "", false
	}
}

// Showing reports whether a dialog is open.
func (p *MeshPicker) Showing() bool {
	return p.open
}

//go:build gui

package gui

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// SurfaceWidget shows frames produced by the render loop and reports
// pointer, tap and size changes back to it.
type SurfaceWidget struct {
	widget.BaseWidget
	img *canvas.Image

	mu          sync.Mutex
	onPointer   func(x, y float64)
	onResize    func(w, h int)
	onTap       func()
	onSecondary func()
}

func NewSurfaceWidget() *SurfaceWidget {
	s := &SurfaceWidget{img: canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))}
	s.img.FillMode = canvas.ImageFillStretch
	s.img.ScaleMode = canvas.ImageScaleFastest
	s.ExtendBaseWidget(s)
	return s
}

func (s *SurfaceWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(s.img)
}

func (s *SurfaceWidget) MinSize() fyne.Size { return fyne.NewSize(240, 240) }

// SetFrame swaps in a finished frame. Safe from any goroutine.
func (s *SurfaceWidget) SetFrame(img *image.RGBA) {
	fyne.Do(func() {
		s.img.Image = img
		s.img.Refresh()
	})
}

func (s *SurfaceWidget) Resize(size fyne.Size) {
	s.BaseWidget.Resize(size)
	s.mu.Lock()
	fn := s.onResize
	s.mu.Unlock()
	if fn != nil {
		fn(int(size.Width), int(size.Height))
	}
}

func (s *SurfaceWidget) MouseIn(e *desktop.MouseEvent) { s.MouseMoved(e) }

func (s *SurfaceWidget) MouseMoved(e *desktop.MouseEvent) {
	s.mu.Lock()
	fn := s.onPointer
	s.mu.Unlock()
	if fn != nil {
		fn(float64(e.Position.X), float64(e.Position.Y))
	}
}

func (s *SurfaceWidget) MouseOut() {}

func (s *SurfaceWidget) Tapped(*fyne.PointEvent) {
	s.mu.Lock()
	fn := s.onTap
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *SurfaceWidget) TappedSecondary(*fyne.PointEvent) {
	s.mu.Lock()
	fn := s.onSecondary
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

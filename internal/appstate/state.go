// Package appstate runs the preview window: a shiny window that shows a
// drawing surface while a turn replays on it, with a one-line status bar.
package appstate

import (
	"image"
	"log"
	"sync"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// AppState holds what the preview window shows.
type AppState struct {
	Title string

	// Frame returns the current surface pixels. It is called on every paint.
	Frame func() *image.RGBA

	updateCh chan struct{}

	mu     sync.Mutex
	status string

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an AppState during creation.
type Option func(*AppState)

// WithTitle sets the text shown at the left of the status bar.
func WithTitle(title string) Option { return func(a *AppState) { a.Title = title } }

// WithFrame sets the pixel source of the window.
func WithFrame(fn func() *image.RGBA) Option { return func(a *AppState) { a.Frame = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(a *AppState) { a.onClose = fn } }

// New creates an AppState with the provided options.
func New(opts ...Option) *AppState {
	a := &AppState{
		Title:    "sketchbot",
		updateCh: make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// NotifyImageChanged requests a repaint. It never blocks, so it is safe to
// call from a surface change hook.
func (a *AppState) NotifyImageChanged() {
	select {
	case a.updateCh <- struct{}{}:
	default:
	}
}

// SetStatus replaces the status bar message and repaints.
func (a *AppState) SetStatus(msg string) {
	a.mu.Lock()
	a.status = msg
	a.mu.Unlock()
	a.NotifyImageChanged()
}

// Status returns the status bar message.
func (a *AppState) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *AppState) notifyClose() {
	a.closeOnce.Do(func() {
		if a.onClose != nil {
			a.onClose()
		}
	})
}

func (a *AppState) frame() *image.RGBA {
	if a.Frame == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return a.Frame()
}

// Run executes the UI loop using shiny's driver. It returns when the
// window is closed.
func (a *AppState) Run() { driver.Main(a.Main) }

func (a *AppState) Main(s screen.Screen) {
	defer a.notifyClose()

	first := a.frame()
	width := first.Bounds().Dx()
	height := first.Bounds().Dy() + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: a.Title})
	if err != nil {
		log.Printf("new window: %v", err)
		return
	}
	defer w.Release()

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-a.updateCh:
				w.Send(paint.Event{})
			case <-done:
				return
			}
		}
	}()

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return
			}
		case key.Event:
			if e.Direction != key.DirPress {
				continue
			}
			if e.Code == key.CodeEscape || e.Rune == 'q' {
				return
			}
		case size.Event:
			width, height = e.WidthPx, e.HeightPx
			w.Send(paint.Event{})
		case paint.Event:
			if err := a.publish(s, w, image.Pt(width, height)); err != nil {
				log.Printf("paint: %v", err)
			}
		case error:
			log.Printf("window: %v", e)
		}
	}
}

func (a *AppState) publish(s screen.Screen, w screen.Window, sz image.Point) error {
	if sz.X < 1 || sz.Y < 1 {
		return nil
	}
	b, err := s.NewBuffer(sz)
	if err != nil {
		return err
	}
	defer b.Release()
	Compose(b.RGBA(), a.frame(), a.Title, a.Status())
	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
	return nil
}

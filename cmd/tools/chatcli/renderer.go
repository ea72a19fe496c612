package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/aurion-studio/aurion-web/backend/internal/widget"
)

// lineRenderer prints bubbles as lines. Pending placeholders are printed
// once and the resolved text follows on its own line.
type lineRenderer struct {
	mu  sync.Mutex
	out io.Writer
}

func newLineRenderer(out io.Writer) *lineRenderer {
	return &lineRenderer{out: out}
}

func (r *lineRenderer) Append(b widget.Bubble) {
	switch b.Kind {
	case widget.BubbleUser:
		// already on screen as typed input
		return
	case widget.BubbleNotice:
		r.printf("-- %s\n", b.Text)
	default:
		r.printf("aurion> %s\n", b.Text)
	}
}

func (r *lineRenderer) Update(b widget.Bubble) {
	r.printf("aurion> %s\n", b.Text)
}

func (r *lineRenderer) DisableInput() {
	r.printf("-- input closed\n")
}

func (r *lineRenderer) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format, args...)
}

// Package render holds the two event consumers: a line-per-event trace
// writer and the live terminal display.
package render

import (
	"fmt"
	"io"

	"github.com/pkdone/stockticker/internal/tracker"
	"github.com/pkdone/stockticker/pkg/models"
)

// Trace prints one line per filtered event: symbol, new price, arrival
// time. Write errors propagate so an unusable output device terminates the
// consuming loop.
type Trace struct {
	w     io.Writer
	clock tracker.Clock
}

func NewTrace(w io.Writer, clock tracker.Clock) *Trace {
	return &Trace{w: w, clock: clock}
}

func (t *Trace) Start(map[string]float64) error { return nil }

func (t *Trace) OnEvent(ev models.ChangeEvent, _ tracker.State) error {
	_, err := fmt.Fprintf(t.w, "Stock %s \ttick: %.0f \t time: %s\n",
		ev.Symbol, ev.Price, t.clock.Now().Format("15:04:05.0000"))
	return err
}

func (t *Trace) Close() error { return nil }

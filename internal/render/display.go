package render

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pkdone/stockticker/internal/tracker"
	"github.com/pkdone/stockticker/pkg/models"
)

// Display runs the live view in a bubbletea program. The consumer loop
// stays single-threaded: each applied event is forwarded as a message with
// a state copy, so the TUI goroutine never shares mutable state with the
// tracker.
type Display struct {
	watch  *models.WatchList
	clock  tracker.Clock
	window time.Duration

	program   *tea.Program
	done      chan struct{}
	runErr    error
	closeOnce sync.Once
}

func NewDisplay(watch *models.WatchList, clock tracker.Clock, window time.Duration) *Display {
	return &Display{
		watch:  watch,
		clock:  clock,
		window: window,
		done:   make(chan struct{}),
	}
}

// Start draws the bootstrap snapshot and hands the terminal to bubbletea.
func (d *Display) Start(snapshot map[string]float64) error {
	m := newDisplayModel(d.watch, d.clock, d.window, snapshot)
	d.program = tea.NewProgram(m, tea.WithAltScreen())

	go func() {
		_, err := d.program.Run()
		d.runErr = err
		close(d.done)
	}()
	return nil
}

// OnEvent forwards the new state to the TUI. Sending after the program has
// quit is a no-op; the command layer notices Done and cancels the consumer.
func (d *Display) OnEvent(_ models.ChangeEvent, state tracker.State) error {
	d.program.Send(stateMsg{state: state})
	return nil
}

// Done is closed once the program has exited and the terminal is restored,
// whether by user keypress or by Close.
func (d *Display) Done() <-chan struct{} { return d.done }

func (d *Display) Close() error {
	if d.program == nil {
		return nil
	}
	d.closeOnce.Do(func() {
		d.program.Quit()
		<-d.done
	})
	return d.runErr
}

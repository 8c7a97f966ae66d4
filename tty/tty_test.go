package tty

import (
	"iter"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/murmurchat/murmur/chunk"
	"github.com/murmurchat/murmur/keymap"
	"github.com/murmurchat/murmur/store"
)

type stubItem struct {
	id store.ID
	ch chunk.Chunk
}

// stubWindow is a minimal content provider: fixed items, a movable
// cursor, bookkeeping for focus/destroy/keys.
type stubWindow struct {
	id        uuid.UUID
	items     []stubItem
	cursor    store.ID
	keys      []keymap.Keystroke
	focused   int
	destroyed int
	r         *Renderer
}

// newStubWindow builds a window with one item per body, ids 1..n, cursor
// on the first.
func newStubWindow(bodies ...string) *stubWindow {
	w := &stubWindow{id: uuid.New()}
	for i, body := range bodies {
		w.items = append(w.items, stubItem{
			id: store.ID{Time: int64(i + 1)},
			ch: chunk.Chunk{{Text: body}},
		})
	}
	if len(w.items) > 0 {
		w.cursor = w.items[0].id
	}
	return w
}

func (w *stubWindow) ID() uuid.UUID { return w.id }

func (w *stubWindow) View(origin store.ID, forward bool) iter.Seq2[store.ID, chunk.Chunk] {
	return func(yield func(store.ID, chunk.Chunk) bool) {
		if forward {
			for _, it := range w.items {
				if it.id.Less(origin) {
					continue
				}
				if !yield(it.id, w.render(it)) {
					return
				}
			}
			return
		}
		for i := len(w.items) - 1; i >= 0; i-- {
			if origin.Less(w.items[i].id) {
				continue
			}
			if !yield(w.items[i].id, w.render(w.items[i])) {
				return
			}
		}
	}
}

func (w *stubWindow) render(it stubItem) chunk.Chunk {
	ch := make(chunk.Chunk, len(it.ch))
	copy(ch, it.ch)
	if it.id == w.cursor && len(ch) > 0 {
		ch[0].Tags.Attrs = ch[0].Tags.Attrs.With(chunk.Visible | chunk.Cursor)
	}
	return ch
}

func (w *stubWindow) Cursor() store.ID                { return w.cursor }
func (w *stubWindow) HandleKey(ks keymap.Keystroke)   { w.keys = append(w.keys, ks) }
func (w *stubWindow) SetRenderer(r *Renderer)         { w.r = r }
func (w *stubWindow) Focus()                          { w.focused++ }
func (w *stubWindow) Destroy()                        { w.destroyed++ }
func (w *stubWindow) WantsRedisplay(h Hint) bool      { return h.Zero() || h.Window == w.id }

// countingDriver wraps the simulation screen and counts paints and beeps.
type countingDriver struct {
	tcell.SimulationScreen
	shows int
	beeps int
}

func (d *countingDriver) Show() {
	d.shows++
	d.SimulationScreen.Show()
}

func (d *countingDriver) Beep() error {
	d.beeps++
	return nil
}

// testFrontend builds a frontend over the simulation screen, normalized
// to 80x24.
func testFrontend(t *testing.T, win Window) (*Frontend, *countingDriver) {
	t.Helper()
	drv := &countingDriver{SimulationScreen: tcell.NewSimulationScreen("UTF-8")}
	fe := New(drv, StaticAssigner{})
	if err := fe.Initial(win); err != nil {
		t.Fatalf("Initial: %v", err)
	}
	fe.Resize(24, 80)
	fe.flush()
	return fe, drv
}

// checkPartition asserts the viewports tile the screen height exactly.
func checkPartition(t *testing.T, fe *Frontend) {
	t.Helper()
	y := 0
	for i, r := range fe.windows {
		if r.y != y {
			t.Fatalf("window %d at y=%d, want %d", i, r.y, y)
		}
		if r.height < 1 {
			t.Fatalf("window %d has height %d", i, r.height)
		}
		y += r.height
	}
	if y != fe.maxy {
		t.Fatalf("heights sum to %d, want %d", y, fe.maxy)
	}
}

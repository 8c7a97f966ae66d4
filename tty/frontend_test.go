package tty

import (
	"errors"
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestSplitHalvesAndDeleteRestores(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)

	b := newStubWindow("bravo\n")
	if err := fe.SplitWindow(b); err != nil {
		t.Fatalf("SplitWindow: %v", err)
	}
	checkPartition(t, fe)
	if len(fe.windows) != 2 {
		t.Fatalf("%d windows after split", len(fe.windows))
	}
	if fe.windows[0].height != 12 || fe.windows[1].height != 12 {
		t.Fatalf("heights %d/%d, want 12/12", fe.windows[0].height, fe.windows[1].height)
	}
	if b.r == nil {
		t.Fatal("new window has no renderer")
	}

	if err := fe.DeleteWindow(1); err != nil {
		t.Fatalf("DeleteWindow: %v", err)
	}
	checkPartition(t, fe)
	if len(fe.windows) != 1 || fe.windows[0].win != Window(a) {
		t.Fatal("delete did not restore the original window")
	}
	if fe.windows[0].height != 24 {
		t.Fatalf("restored height %d, want 24", fe.windows[0].height)
	}
	if b.destroyed != 1 {
		t.Fatalf("destroyed %d times, want 1", b.destroyed)
	}
	if b.r != nil {
		t.Fatal("deleted window still holds a renderer")
	}
}

func TestSplitTooSmall(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)
	fe.Resize(1, 80)
	if err := fe.SplitWindow(newStubWindow("b\n")); !errors.Is(err, ErrTooSmall) {
		t.Fatalf("err = %v, want ErrTooSmall", err)
	}
}

func TestDeleteOnlyWindow(t *testing.T) {
	fe, _ := testFrontend(t, newStubWindow("alpha\n"))
	if err := fe.DeleteCurrentWindow(); !errors.Is(err, ErrLastWindow) {
		t.Fatalf("err = %v, want ErrLastWindow", err)
	}
}

func TestSwitchWindowWraps(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)
	b := newStubWindow("bravo\n")
	if err := fe.SplitWindow(b); err != nil {
		t.Fatalf("SplitWindow: %v", err)
	}

	fe.SwitchWindow(1)
	if fe.output != 1 || b.focused == 0 {
		t.Fatalf("output %d, b focused %d", fe.output, b.focused)
	}
	fe.SwitchWindow(1)
	if fe.output != 0 {
		t.Fatalf("output %d after wrap, want 0", fe.output)
	}
	fe.SwitchWindow(-1)
	if fe.output != 1 {
		t.Fatalf("output %d after -1, want 1", fe.output)
	}
}

func TestPopupAndPopdown(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)

	c := newStubWindow("popup\n")
	fe.PopupWindow(c, 3, true)
	checkPartition(t, fe)
	if len(fe.windows) != 2 || fe.windows[1].height != 3 || fe.windows[0].height != 21 {
		t.Fatalf("popup layout wrong: %d windows", len(fe.windows))
	}
	if fe.output != 1 || c.focused == 0 {
		t.Fatal("popup not selected")
	}
	if len(fe.popstack) != 1 {
		t.Fatalf("popstack len %d", len(fe.popstack))
	}

	fe.PopdownWindow()
	checkPartition(t, fe)
	if len(fe.windows) != 1 || fe.windows[0].height != 24 {
		t.Fatal("popdown did not restore layout")
	}
	if c.destroyed != 1 {
		t.Fatalf("popup destroyed %d times", c.destroyed)
	}
	if len(fe.popstack) != 0 {
		t.Fatalf("popstack len %d after popdown", len(fe.popstack))
	}
}

func TestPopupReplacesToppopup(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)

	c := newStubWindow("first\n")
	d := newStubWindow("second\n")
	fe.PopupWindow(c, 3, true)
	fe.PopupWindow(d, 5, true)
	checkPartition(t, fe)
	if len(fe.windows) != 2 {
		t.Fatalf("%d windows, want 2 (replace in place)", len(fe.windows))
	}
	if fe.windows[1].win != Window(d) {
		t.Fatal("second popup did not replace the first")
	}
	if c.destroyed != 0 {
		t.Fatal("covered popup was destroyed")
	}
	if len(fe.popstack) != 2 {
		t.Fatalf("popstack len %d, want 2", len(fe.popstack))
	}

	fe.PopdownWindow()
	checkPartition(t, fe)
	if fe.windows[1].win != Window(c) {
		t.Fatal("popdown did not restore the covered popup")
	}
	if d.destroyed != 1 || c.destroyed != 0 {
		t.Fatalf("destroy counts c=%d d=%d", c.destroyed, d.destroyed)
	}

	fe.PopdownWindow()
	checkPartition(t, fe)
	if len(fe.windows) != 1 || fe.windows[0].height != 24 {
		t.Fatal("final popdown did not restore the base window")
	}
}

func TestResizeProportional(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)
	b := newStubWindow("bravo\n")
	if err := fe.SplitWindow(b); err != nil {
		t.Fatalf("SplitWindow: %v", err)
	}

	fe.Resize(48, 80)
	checkPartition(t, fe)
	if fe.windows[0].height != 24 || fe.windows[1].height != 24 {
		t.Fatalf("heights %d/%d after growing, want 24/24",
			fe.windows[0].height, fe.windows[1].height)
	}
}

func TestResizeEvictsFromTop(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)
	b := newStubWindow("bravo\n")
	if err := fe.SplitWindow(b); err != nil {
		t.Fatalf("SplitWindow: %v", err)
	}
	fe.SwitchWindow(1)
	c := newStubWindow("charlie\n")
	if err := fe.SplitWindow(c); err != nil {
		t.Fatalf("SplitWindow: %v", err)
	}

	fe.Resize(2, 80)
	checkPartition(t, fe)
	if len(fe.windows) != 2 {
		t.Fatalf("%d windows after shrink, want 2", len(fe.windows))
	}
	if a.destroyed != 1 {
		t.Fatal("topmost window not evicted")
	}
	if b.destroyed != 0 || c.destroyed != 0 {
		t.Fatal("surviving windows were destroyed")
	}
}

func TestOpSequenceKeepsPartition(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)

	steps := []func(){
		func() { fe.SplitWindow(newStubWindow("one\n")) },
		func() { fe.SwitchWindow(1) },
		func() { fe.SplitWindow(newStubWindow("two\n")) },
		func() { fe.PopupWindow(newStubWindow("pop\n"), 2, true) },
		func() { fe.Resize(17, 60) },
		func() { fe.PopdownWindow() },
		func() { fe.DeleteCurrentWindow() },
		func() { fe.Resize(40, 100) },
		func() { fe.DeleteOtherWindows() },
	}
	for i, step := range steps {
		step()
		checkPartition(t, fe)
		if i >= 0 && fe.output >= len(fe.windows) {
			t.Fatalf("step %d left focus index %d of %d", i, fe.output, len(fe.windows))
		}
	}
	if len(fe.windows) != 1 {
		t.Fatalf("%d windows at end, want 1", len(fe.windows))
	}
}

func TestHandleKeyRepaintsOnce(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, drv := testFrontend(t, a)

	before := drv.shows
	fe.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'n', tcell.ModNone))
	if len(a.keys) != 1 {
		t.Fatalf("window saw %d keys", len(a.keys))
	}
	if drv.shows != before+1 {
		t.Fatalf("%d paints for one key, want 1", drv.shows-before)
	}
}

func TestHandleKeyAltPrefix(t *testing.T) {
	a := newStubWindow("alpha\n")
	fe, _ := testFrontend(t, a)

	fe.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'v', tcell.ModAlt))
	if len(a.keys) != 2 {
		t.Fatalf("window saw %d keys, want ESC prefix plus rune", len(a.keys))
	}
	if a.keys[0].Key != tcell.Key(0x1b) || a.keys[1].Ch != 'v' {
		t.Fatalf("keys = %v", a.keys)
	}
}

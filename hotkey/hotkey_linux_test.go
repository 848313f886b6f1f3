//go:build linux

package hotkey

import "testing"

type keyEvent struct {
	code  uint16
	value int32
}

func feedAll(tr *comboTracker, events []keyEvent) (downs, ups int) {
	for _, e := range events {
		p, r := tr.feed(e.code, e.value)
		if p {
			downs++
		}
		if r {
			ups++
		}
	}
	return downs, ups
}

func TestComboTrackerPressRelease(t *testing.T) {
	tr := newComboTracker(DefaultCombo)
	downs, ups := feedAll(tr, []keyEvent{
		{keyLCtrl, keyPress},
		{keyRShift, keyPress},
		{57, keyPress},
		{57, 2}, // auto-repeat
		{57, 2},
		{keyLCtrl, keyRelease},
		{57, keyRelease},
	})
	if downs != 1 || ups != 1 {
		t.Fatalf("downs=%d ups=%d, want 1 and 1", downs, ups)
	}
}

func TestComboTrackerNeedsModifiers(t *testing.T) {
	tr := newComboTracker(DefaultCombo)
	downs, ups := feedAll(tr, []keyEvent{
		{keyLCtrl, keyPress},
		{57, keyPress},
		{57, keyRelease},
	})
	if downs != 0 || ups != 0 {
		t.Fatalf("downs=%d ups=%d without shift, want none", downs, ups)
	}
}

func TestComboTrackerLetterKey(t *testing.T) {
	tr := newComboTracker(Combo{Ctrl: true, Key: "k"})
	downs, ups := feedAll(tr, []keyEvent{
		{keyRCtrl, keyPress},
		{evdevKeys["k"], keyPress},
		{evdevKeys["k"], keyRelease},
		{evdevKeys["k"], keyPress}, // ctrl still held
		{evdevKeys["k"], keyRelease},
	})
	if downs != 2 || ups != 2 {
		t.Fatalf("downs=%d ups=%d, want 2 and 2", downs, ups)
	}
}

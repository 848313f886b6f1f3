package hotkey

import "testing"

func TestParseCombo(t *testing.T) {
	tests := []struct {
		in      string
		want    Combo
		wantErr bool
	}{
		{"ctrl+shift+space", DefaultCombo, false},
		{" Ctrl + K ", Combo{Ctrl: true, Key: "k"}, false},
		{"shift+control+a", Combo{Ctrl: true, Shift: true, Key: "a"}, false},
		{"space", Combo{}, true},
		{"ctrl+shift", Combo{}, true},
		{"ctrl+a+b", Combo{}, true},
		{"alt+space", Combo{}, true},
		{"ctrl+f1", Combo{}, true},
	}
	for _, tt := range tests {
		got, err := ParseCombo(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCombo(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCombo(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestComboStringRoundTrip(t *testing.T) {
	for _, c := range []Combo{DefaultCombo, {Ctrl: true, Key: "k"}, {Shift: true, Key: "z"}} {
		got, err := ParseCombo(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCombo(%q) = %+v, %v", c.String(), got, err)
		}
	}
}

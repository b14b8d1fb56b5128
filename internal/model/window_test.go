package model

import "testing"

func TestWindow_HasTitle(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"DatingApp (Demo)", true},
		{"", false},
		{"   ", false},
		{"x", true},
	}
	for _, tt := range tests {
		w := Window{ID: "0x01", Title: tt.title}
		if got := w.HasTitle(); got != tt.want {
			t.Errorf("HasTitle(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}

func TestWindow_String(t *testing.T) {
	w := Window{ID: "0x04a00007", Title: "DatingApp (Demo)"}
	if got := w.String(); got != "0x04a00007 DatingApp (Demo)" {
		t.Errorf("String() = %q", got)
	}
}

package platform

import "testing"

func TestParseMouseButton_Valid(t *testing.T) {
	tests := []struct {
		input string
		want  MouseButton
	}{
		{"", MouseLeft},
		{"left", MouseLeft},
		{"Left", MouseLeft},
		{"LEFT", MouseLeft},
		{"right", MouseRight},
		{"Right", MouseRight},
		{"middle", MouseMiddle},
		{"Middle", MouseMiddle},
	}
	for _, tt := range tests {
		got, err := ParseMouseButton(tt.input)
		if err != nil {
			t.Errorf("ParseMouseButton(%q): %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseMouseButton(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParseMouseButton_Invalid(t *testing.T) {
	_, err := ParseMouseButton("invalid")
	if err == nil {
		t.Error("ParseMouseButton(\"invalid\") should fail")
	}
}

func TestMouseButton_X11Button(t *testing.T) {
	tests := []struct {
		b    MouseButton
		want int
	}{
		{MouseLeft, 1},
		{MouseMiddle, 2},
		{MouseRight, 3},
	}
	for _, tt := range tests {
		if got := tt.b.X11Button(); got != tt.want {
			t.Errorf("%s.X11Button() = %d, want %d", tt.b, got, tt.want)
		}
	}
}

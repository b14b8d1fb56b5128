package model

import "strings"

// Window is one entry of a window-list query. It is produced fresh on every
// query and is only meaningful for the lookup that produced it.
type Window struct {
	ID      string `yaml:"id"             json:"id"`
	Desktop int    `yaml:"desktop"        json:"desktop"`
	Host    string `yaml:"host,omitempty" json:"host,omitempty"`
	Title   string `yaml:"title"          json:"title"`
}

// String renders the window the way wmctrl lists it.
func (w Window) String() string {
	return w.ID + " " + w.Title
}

// HasTitle reports whether the window carries a non-blank title.
func (w Window) HasTitle() bool {
	return strings.TrimSpace(w.Title) != ""
}

// FocusAttempt is the outcome of one focus-and-verify run.
type FocusAttempt struct {
	OK          bool    `yaml:"ok"                     json:"ok"`
	Attempt     int     `yaml:"attempts"               json:"attempts"`
	Window      *Window `yaml:"window,omitempty"       json:"window,omitempty"`
	ActiveTitle string  `yaml:"active_title,omitempty" json:"active_title,omitempty"`
	Fallback    bool    `yaml:"fallback,omitempty"     json:"fallback,omitempty"`
	Reason      string  `yaml:"reason,omitempty"       json:"reason,omitempty"`
}

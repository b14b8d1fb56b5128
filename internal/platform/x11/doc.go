// Package x11 implements the platform interfaces on X11 desktops by shelling
// out to wmctrl, xdotool and ImageMagick's import.
package x11

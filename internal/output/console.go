package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Level is the severity of a console status line.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarn
	LevelError
	LevelHeader
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var levelTags = map[Level]string{
	LevelInfo:    "INFO",
	LevelSuccess: " OK ",
	LevelWarn:    "WARN",
	LevelError:   "FAIL",
}

// Console prints colored human-readable status lines. Structured results go
// through Print instead.
type Console struct {
	w     io.Writer
	plain bool
}

// NewConsole writes to w. Colors are disabled when plain is true.
func NewConsole(w io.Writer, plain bool) *Console {
	if w == nil {
		w = os.Stdout
	}
	return &Console{w: w, plain: plain}
}

// DefaultConsole writes to stdout, plain when stdout is piped.
func DefaultConsole() *Console {
	return NewConsole(os.Stdout, IsOutputPiped())
}

func (c *Console) style(l Level) lipgloss.Style {
	switch l {
	case LevelSuccess:
		return successStyle
	case LevelWarn:
		return warnStyle
	case LevelError:
		return errorStyle
	case LevelHeader:
		return headerStyle
	default:
		return infoStyle
	}
}

// Line prints msg at level l.
func (c *Console) Line(l Level, msg string) {
	if l == LevelHeader {
		rule := strings.Repeat("=", 60)
		if c.plain {
			fmt.Fprintf(c.w, "\n%s\n%s\n%s\n", rule, msg, rule)
			return
		}
		fmt.Fprintf(c.w, "\n%s\n%s\n%s\n", mutedStyle.Render(rule), headerStyle.Render(msg), mutedStyle.Render(rule))
		return
	}
	tag := "[" + levelTags[l] + "]"
	if c.plain {
		fmt.Fprintf(c.w, "%s %s\n", tag, msg)
		return
	}
	fmt.Fprintf(c.w, "%s %s\n", c.style(l).Render(tag), msg)
}

func (c *Console) Info(format string, args ...any) {
	c.Line(LevelInfo, fmt.Sprintf(format, args...))
}

func (c *Console) Success(format string, args ...any) {
	c.Line(LevelSuccess, fmt.Sprintf(format, args...))
}

func (c *Console) Warn(format string, args ...any) {
	c.Line(LevelWarn, fmt.Sprintf(format, args...))
}

func (c *Console) Error(format string, args ...any) {
	c.Line(LevelError, fmt.Sprintf(format, args...))
}

func (c *Console) Header(format string, args ...any) {
	c.Line(LevelHeader, fmt.Sprintf(format, args...))
}

// Detail prints an indented secondary line.
func (c *Console) Detail(format string, args ...any) {
	msg := "   " + fmt.Sprintf(format, args...)
	if c.plain {
		fmt.Fprintln(c.w, msg)
		return
	}
	fmt.Fprintln(c.w, mutedStyle.Render(msg))
}

// IsOutputPiped reports whether stdout is not a terminal.
func IsOutputPiped() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return true
	}
	return fi.Mode()&os.ModeCharDevice == 0
}

// Step prints a numbered progress line.
func (c *Console) Step(n int, format string, args ...any) {
	num := fmt.Sprintf("%2d.", n)
	msg := fmt.Sprintf(format, args...)
	if c.plain {
		fmt.Fprintf(c.w, "%s %s\n", num, msg)
		return
	}
	fmt.Fprintf(c.w, "%s %s\n", infoStyle.Render(num), msg)
}

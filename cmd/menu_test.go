package cmd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mj1618/demopilot/internal/output"
)

func testMenu(out *bytes.Buffer, calls *[]string) *menu {
	return &menu{
		Title: "test",
		Out:   out,
		Con:   output.NewConsole(out, true),
		Items: []menuItem{
			{Label: "ok", Run: func(context.Context, *bufio.Reader) error {
				*calls = append(*calls, "ok")
				return nil
			}},
			{Label: "boom", Run: func(context.Context, *bufio.Reader) error {
				*calls = append(*calls, "boom")
				return errors.New("safety block")
			}},
			{Label: "ask", Run: func(_ context.Context, in *bufio.Reader) error {
				*calls = append(*calls, "ask:"+prompt(in, out, "Email", "default@demo.com"))
				return nil
			}},
		},
	}
}

func TestMenu_RecoversFromFailingEntry(t *testing.T) {
	var out bytes.Buffer
	var calls []string
	m := testMenu(&out, &calls)

	failures := m.loop(context.Background(), bufio.NewReader(strings.NewReader("2\n1\n0\n")))
	assert.Equal(t, 1, failures)
	assert.Equal(t, []string{"boom", "ok"}, calls)
	assert.Contains(t, out.String(), "[FAIL] boom failed: safety block")
	assert.Contains(t, out.String(), "[ OK ] ok done")
}

func TestMenu_RecoversFromPanickingEntry(t *testing.T) {
	var out bytes.Buffer
	var calls []string
	m := testMenu(&out, &calls)
	m.Items[1].Run = func(context.Context, *bufio.Reader) error {
		calls = append(calls, "panic")
		panic("no window handle")
	}

	failures := m.loop(context.Background(), bufio.NewReader(strings.NewReader("2\n1\n0\n")))
	assert.Equal(t, 1, failures)
	assert.Equal(t, []string{"panic", "ok"}, calls)
	assert.Contains(t, out.String(), "boom failed: panic: no window handle")
}

func TestMenu_InvalidChoice(t *testing.T) {
	var out bytes.Buffer
	var calls []string
	m := testMenu(&out, &calls)

	m.loop(context.Background(), bufio.NewReader(strings.NewReader("9\nx\n0\n")))
	assert.Empty(t, calls)
	assert.Equal(t, 2, strings.Count(out.String(), "invalid option"))
}

func TestMenu_EOFExits(t *testing.T) {
	var out bytes.Buffer
	var calls []string
	m := testMenu(&out, &calls)

	m.loop(context.Background(), bufio.NewReader(strings.NewReader("1")))
	assert.Equal(t, []string{"ok"}, calls)

	calls = nil
	m.loop(context.Background(), bufio.NewReader(strings.NewReader("")))
	assert.Empty(t, calls)
}

func TestMenu_PromptDefaults(t *testing.T) {
	var out bytes.Buffer
	var calls []string
	m := testMenu(&out, &calls)

	m.loop(context.Background(), bufio.NewReader(strings.NewReader("3\n\n3\nanna@demo.com\n0\n")))
	assert.Equal(t, []string{"ask:default@demo.com", "ask:anna@demo.com"}, calls)
}

func TestMenu_StopsWhenCancelled(t *testing.T) {
	var out bytes.Buffer
	var calls []string
	m := testMenu(&out, &calls)
	ctx, cancel := context.WithCancel(context.Background())
	m.Items[0].Run = func(context.Context, *bufio.Reader) error {
		calls = append(calls, "ok")
		cancel()
		return nil
	}

	m.loop(ctx, bufio.NewReader(strings.NewReader("1\n1\n0\n")))
	assert.Equal(t, []string{"ok"}, calls)
}

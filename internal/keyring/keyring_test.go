package keyring

import (
	"strings"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestFindCollection(t *testing.T) {
	paths := []dbus.ObjectPath{
		"/org/freedesktop/secrets/collection/session",
		"/org/freedesktop/secrets/collection/login",
	}
	p, ok := FindCollection(paths, LoginCollection)
	assert.True(t, ok)
	assert.Equal(t, dbus.ObjectPath("/org/freedesktop/secrets/collection/login"), p)

	_, ok = FindCollection(paths[:1], LoginCollection)
	assert.False(t, ok)
}

func TestCollectionNames(t *testing.T) {
	names := CollectionNames([]dbus.ObjectPath{
		"/org/freedesktop/secrets/collection/session",
		"/org/freedesktop/secrets/collection/login",
	})
	assert.Equal(t, []string{"login", "session"}, names)
}

func TestNeedsPrompt(t *testing.T) {
	assert.False(t, NeedsPrompt("/"))
	assert.False(t, NeedsPrompt(""))
	assert.True(t, NeedsPrompt("/org/freedesktop/secrets/prompt/u1"))
}

func TestPromptDismissed(t *testing.T) {
	assert.True(t, PromptDismissed([]interface{}{true, dbus.MakeVariant("")}))
	assert.False(t, PromptDismissed([]interface{}{false, dbus.MakeVariant("")}))
	assert.False(t, PromptDismissed(nil))
}

func TestInstructions(t *testing.T) {
	with := Instructions(true)
	assert.Contains(t, with, "secret-tool lock --collection=login")
	assert.Contains(t, with, "seahorse")

	without := Instructions(false)
	assert.False(t, strings.Contains(without, "secret-tool lock"))
	assert.NotContains(t, without, "password:")
}

// Package keyring inspects and toggles the login keyring through the
// freedesktop Secret Service on the D-Bus session bus. It never reads or
// stores passwords; unlocking is delegated to the keyring daemon's prompt.
package keyring

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	serviceName     = "org.freedesktop.secrets"
	servicePath     = dbus.ObjectPath("/org/freedesktop/secrets")
	serviceIface    = "org.freedesktop.Secret.Service"
	collectionIface = "org.freedesktop.Secret.Collection"
	promptIface     = "org.freedesktop.Secret.Prompt"

	// LoginCollection is the collection unlocked at session login.
	LoginCollection = "login"

	noPrompt = dbus.ObjectPath("/")
)

// ErrNoDaemon means no process owns the Secret Service bus name.
var ErrNoDaemon = errors.New("secret service daemon is not running")

// ErrNoLogin means the login collection does not exist.
var ErrNoLogin = errors.New("login keyring not found")

// ErrDismissed means the user dismissed the unlock prompt.
var ErrDismissed = errors.New("unlock prompt dismissed")

// Status describes the Secret Service state.
type Status struct {
	DaemonRunning bool     `yaml:"daemon_running"         json:"daemon_running"`
	Collections   []string `yaml:"collections,omitempty"  json:"collections,omitempty"`
	LoginExists   bool     `yaml:"login_exists"           json:"login_exists"`
	LoginLocked   bool     `yaml:"login_locked"           json:"login_locked"`
	Error         string   `yaml:"error,omitempty"        json:"error,omitempty"`
}

// Client talks to the Secret Service over a private session bus connection.
type Client struct {
	conn *dbus.Conn
}

// Connect opens a session bus connection.
func Connect(ctx context.Context) (*Client, error) {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close releases the bus connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) service() dbus.BusObject {
	return c.conn.Object(serviceName, servicePath)
}

// DaemonRunning reports whether the Secret Service name has an owner.
func (c *Client) DaemonRunning(ctx context.Context) (bool, error) {
	var has bool
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.NameHasOwner", 0, serviceName).Store(&has)
	if err != nil {
		return false, fmt.Errorf("query bus name owner: %w", err)
	}
	return has, nil
}

func (c *Client) collections() ([]dbus.ObjectPath, error) {
	v, err := c.service().GetProperty(serviceIface + ".Collections")
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	paths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, fmt.Errorf("list collections: unexpected type %s", v.Signature())
	}
	return paths, nil
}

func (c *Client) loginPath() (dbus.ObjectPath, error) {
	paths, err := c.collections()
	if err != nil {
		return "", err
	}
	p, ok := FindCollection(paths, LoginCollection)
	if !ok {
		return "", ErrNoLogin
	}
	return p, nil
}

// Status reports daemon presence, collections and the login lock state.
// Failures after the daemon check are recorded in Status.Error.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	running, err := c.DaemonRunning(ctx)
	if err != nil {
		return st, err
	}
	st.DaemonRunning = running
	if !running {
		return st, nil
	}

	paths, err := c.collections()
	if err != nil {
		st.Error = err.Error()
		return st, nil
	}
	st.Collections = CollectionNames(paths)

	login, ok := FindCollection(paths, LoginCollection)
	if !ok {
		return st, nil
	}
	st.LoginExists = true
	v, err := c.conn.Object(serviceName, login).GetProperty(collectionIface + ".Locked")
	if err != nil {
		st.Error = fmt.Sprintf("read lock state: %v", err)
		return st, nil
	}
	locked, _ := v.Value().(bool)
	st.LoginLocked = locked
	return st, nil
}

func (c *Client) requireDaemon(ctx context.Context) error {
	running, err := c.DaemonRunning(ctx)
	if err != nil {
		return err
	}
	if !running {
		return ErrNoDaemon
	}
	return nil
}

// Lock locks the login collection.
func (c *Client) Lock(ctx context.Context) error {
	return c.toggle(ctx, "Lock")
}

// Unlock asks the daemon to unlock the login collection. The daemon shows
// its own password prompt; Unlock waits for it to complete.
func (c *Client) Unlock(ctx context.Context) error {
	return c.toggle(ctx, "Unlock")
}

func (c *Client) toggle(ctx context.Context, method string) error {
	if err := c.requireDaemon(ctx); err != nil {
		return err
	}
	login, err := c.loginPath()
	if err != nil {
		return err
	}
	var done []dbus.ObjectPath
	var prompt dbus.ObjectPath
	call := c.service().CallWithContext(ctx, serviceIface+"."+method, 0, []dbus.ObjectPath{login})
	if err := call.Store(&done, &prompt); err != nil {
		return fmt.Errorf("%s login keyring: %w", strings.ToLower(method), err)
	}
	if !NeedsPrompt(prompt) {
		return nil
	}
	return c.runPrompt(ctx, prompt)
}

func (c *Client) runPrompt(ctx context.Context, prompt dbus.ObjectPath) error {
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(prompt),
		dbus.WithMatchInterface(promptIface),
		dbus.WithMatchMember("Completed"),
	}
	if err := c.conn.AddMatchSignalContext(ctx, opts...); err != nil {
		return fmt.Errorf("watch prompt: %w", err)
	}
	defer c.conn.RemoveMatchSignal(opts...)

	signals := make(chan *dbus.Signal, 4)
	c.conn.Signal(signals)
	defer c.conn.RemoveSignal(signals)

	if err := c.conn.Object(serviceName, prompt).CallWithContext(ctx, promptIface+".Prompt", 0, "").Err; err != nil {
		return fmt.Errorf("show prompt: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.Object(serviceName, prompt).Call(promptIface+".Dismiss", 0).Err
			return ctx.Err()
		case sig := <-signals:
			if sig == nil || sig.Path != prompt || sig.Name != promptIface+".Completed" {
				continue
			}
			if PromptDismissed(sig.Body) {
				return ErrDismissed
			}
			return nil
		}
	}
}

// FindCollection returns the path whose last element is name.
func FindCollection(paths []dbus.ObjectPath, name string) (dbus.ObjectPath, bool) {
	for _, p := range paths {
		if path.Base(string(p)) == name {
			return p, true
		}
	}
	return "", false
}

// CollectionNames returns the sorted last path elements.
func CollectionNames(paths []dbus.ObjectPath) []string {
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, path.Base(string(p)))
	}
	sort.Strings(names)
	return names
}

// NeedsPrompt reports whether a Lock/Unlock reply carries a real prompt.
func NeedsPrompt(p dbus.ObjectPath) bool {
	return p != "" && p != noPrompt
}

// PromptDismissed decodes the dismissed flag of a Completed signal body.
func PromptDismissed(body []interface{}) bool {
	if len(body) == 0 {
		return false
	}
	d, ok := body[0].(bool)
	return ok && d
}

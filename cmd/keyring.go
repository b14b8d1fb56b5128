package cmd

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/mj1618/demopilot/internal/keyring"
	"github.com/mj1618/demopilot/internal/output"
)

// KeyringResult is the output of keyring lock and unlock.
type KeyringResult struct {
	OK     bool   `yaml:"ok"              json:"ok"`
	Action string `yaml:"action"          json:"action"`
	Error  string `yaml:"error,omitempty" json:"error,omitempty"`
}

var keyringCmd = &cobra.Command{
	Use:   "keyring",
	Short: "Inspect and unlock the login keyring",
	Long: `Talk to the Secret Service (gnome-keyring) over D-Bus. A locked login
keyring pops up unlock dialogs that steal focus from the demo window.
No password is ever read or stored by demopilot.`,
}

var keyringStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the login keyring exists and is locked",
	RunE:  runKeyringStatus,
}

var keyringLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Lock the login keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeyringToggle(cmd, "lock", (*keyring.Client).Lock)
	},
}

var keyringUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Unlock the login keyring (the daemon prompts for the password)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runKeyringToggle(cmd, "unlock", (*keyring.Client).Unlock)
	},
}

var keyringHelpCmd = &cobra.Command{
	Use:     "help-sync",
	Aliases: []string{"instructions"},
	Short: "Print steps to sync the keyring password with the login password",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := exec.LookPath("secret-tool")
		fmt.Fprint(cmd.OutOrStdout(), keyring.Instructions(err == nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keyringCmd)
	keyringCmd.AddCommand(keyringStatusCmd, keyringLockCmd, keyringUnlockCmd, keyringHelpCmd)
}

func runKeyringStatus(cmd *cobra.Command, args []string) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	c, err := keyring.Connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	st, err := c.Status(ctx)
	if err != nil {
		return err
	}
	if err := output.Print(st); err != nil {
		return err
	}
	con := progress()
	switch {
	case !st.DaemonRunning:
		con.Warn("secret service is not running")
	case !st.LoginExists:
		con.Warn("no login keyring, run 'demopilot keyring help-sync'")
	case st.LoginLocked:
		con.Warn("login keyring is locked, unlock dialogs may steal focus during the demo")
	default:
		con.Success("login keyring is unlocked")
	}
	return nil
}

func runKeyringToggle(cmd *cobra.Command, action string, fn func(*keyring.Client, context.Context) error) error {
	ctx, stop := commandContext(cmd)
	defer stop()

	c, err := keyring.Connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	res := KeyringResult{Action: action}
	if err := fn(c, ctx); err != nil {
		res.Error = err.Error()
		return finish(res, false)
	}
	res.OK = true
	return output.Print(res)
}

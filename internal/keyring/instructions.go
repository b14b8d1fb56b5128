package keyring

import "strings"

// Instructions returns the manual steps for making the login keyring
// password match the account password so it unlocks at login.
func Instructions(secretToolAvailable bool) string {
	var b strings.Builder
	b.WriteString("Login keyring password sync\n\n")
	b.WriteString("The login keyring only unlocks automatically when its password\n")
	b.WriteString("matches your account login password.\n\n")
	if secretToolAvailable {
		b.WriteString("Option 1: command line\n")
		b.WriteString("  secret-tool lock --collection=login\n")
		b.WriteString("  then set the new keyring password to your login password when prompted.\n\n")
	}
	b.WriteString("Option 2: Passwords and Keys (seahorse)\n")
	b.WriteString("  env -u SNAP_CONTEXT /usr/bin/seahorse\n")
	b.WriteString("  right-click the Login keyring, choose Change Password and\n")
	b.WriteString("  enter your login password as the new password.\n\n")
	b.WriteString("Option 3: reset\n")
	b.WriteString("  move ~/.local/share/keyrings/login.keyring aside, log out and back in,\n")
	b.WriteString("  and enter your login password when the new keyring is created.\n\n")
	b.WriteString("Tools: sudo apt install libsecret-tools seahorse\n")
	b.WriteString("Check the result with: demopilot keyring status\n")
	return b.String()
}

package main

import (
	"github.com/mj1618/demopilot/cmd"

	_ "github.com/mj1618/demopilot/internal/platform/x11"
)

func main() {
	cmd.Execute()
}

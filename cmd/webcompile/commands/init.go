package commands

import (
	"fmt"

	"git.home.luguber.info/inful/webcompile/internal/config"
)

// InitCmd writes an example configuration file.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration file"`
}

func (cmd *InitCmd) Run(_ *Global, root *CLI) error {
	if err := config.Init(root.Config, cmd.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote example configuration to %s\n", root.Config)
	return nil
}

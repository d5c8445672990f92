package main

import (
	"github.com/spf13/cobra"

	"github.com/kompox/webstack/config/stackcfg"
	"github.com/kompox/webstack/domain/model"
)

// buildEnvironment resolves the stored configuration and environment
// overrides into the immutable Environment of this run.
func buildEnvironment(cmd *cobra.Command) (*model.Environment, error) {
	path, _ := cmd.Flags().GetString("config")
	var (
		root *stackcfg.Root
		err  error
	)
	if cmd.Flags().Changed("config") {
		root, err = stackcfg.Load(path)
	} else {
		root, err = stackcfg.LoadOptional(path)
	}
	if err != nil {
		return nil, err
	}
	ov, err := stackcfg.LoadOverrides(nil)
	if err != nil {
		return nil, err
	}
	return stackcfg.Resolve(root, ov)
}

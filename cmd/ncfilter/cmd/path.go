package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-ncfilter/internal/pluginpath"
)

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the filter plugin search path",
	Long: `Path prints the plugin directories in search order. The list comes from
the plugin_path config key, else HDF5_PLUGIN_PATH, else the default
directory.`,
	Args: cobra.NoArgs,
	RunE: runPath,
}

func init() {
	pathCmd.Flags().StringSlice("append", nil, "directories to search after the configured ones")
	pathCmd.Flags().StringSlice("prepend", nil, "directories to search before the configured ones")
	rootCmd.AddCommand(pathCmd)
}

func runPath(cmd *cobra.Command, args []string) error {
	r := newRegistry(nil)
	defer r.Finalize()

	dirs, err := r.PluginPath()
	if err != nil {
		return err
	}

	appendDirs, _ := cmd.Flags().GetStringSlice("append")
	prependDirs, _ := cmd.Flags().GetStringSlice("prepend")
	for _, dir := range appendDirs {
		dirs = pluginpath.Append(dirs, dir)
	}
	for i := len(prependDirs) - 1; i >= 0; i-- {
		dirs = pluginpath.Prepend(dirs, prependDirs[i])
	}
	if err := r.SetPluginPath(dirs); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), pluginpath.Format(dirs))
	return nil
}

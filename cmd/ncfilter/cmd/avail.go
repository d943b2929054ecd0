package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var availCmd = &cobra.Command{
	Use:   "avail",
	Short: "List the filters a storage format can run",
	Long: `Avail lists the filters registered for a storage format, with whether
each has an encoder and a decoder.`,
	Args: cobra.NoArgs,
	RunE: runAvail,
}

func init() {
	availCmd.Flags().String("format", "", "storage format (hdf5 or zarr; default from config)")
	rootCmd.AddCommand(availCmd)
}

func runAvail(cmd *cobra.Command, args []string) error {
	tag, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	r := newRegistry(nil)
	defer r.Finalize()

	descs, err := r.Descriptors(tag)
	if err != nil {
		return fmt.Errorf("listing %s filters: %w", tag, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Filters for %s:\n", tag)
	fmt.Fprintf(out, "  %-8s %-12s %-8s %s\n", "ID", "NAME", "ENCODE", "DECODE")
	for _, d := range descs {
		fmt.Fprintf(out, "  %-8d %-12s %-8s %s\n", d.ID, d.Name, yesNo(d.HasEncoder), yesNo(d.HasDecoder))
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

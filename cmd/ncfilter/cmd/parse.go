package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-ncfilter/ncfilter"
)

var parseCmd = &cobra.Command{
	Use:   "parse <spec>",
	Short: "Parse a filter spec or spec list",
	Long: `Parse converts filter spec text such as "1,5" or "32768,-17b,23ub"
into a filter id and 32-bit parameter words. Several specs may be given
separated by '|'. Each spec is printed with its words and in canonical form.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	specs, err := ncfilter.ParseSpecList(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(specs) == 0 {
		fmt.Fprintln(out, "No filters.")
		return nil
	}

	fmt.Fprintf(out, "%-8s %-12s %-40s %s\n", "ID", "NAME", "PARAMS", "CANONICAL")
	for _, s := range specs {
		fmt.Fprintf(out, "%-8d %-12s %-40s %s\n", s.ID, filterName(s.ID), fmt.Sprint(s.Params), s)
	}
	return nil
}

// filterName returns the HDF5 name of a builtin filter, or "-".
func filterName(id ncfilter.FilterID) string {
	d, err := ncfilter.Default().Lookup(ncfilter.FormatHDF5, id)
	if err != nil || d.Name == "" {
		return "-"
	}
	return d.Name
}

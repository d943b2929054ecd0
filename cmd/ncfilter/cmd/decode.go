package cmd

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-ncfilter/ncfilter"
)

var decodeCmd = &cobra.Command{
	Use:   "decode <hex|json>",
	Short: "Decode a stored filter list",
	Long: `Decode reads a filter list in its stored form, as printed by "ncfilter
plan", and prints it as spec text. For hdf5 the argument is a hex-encoded
filter pipeline message; for zarr it is a JSON codec list.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().String("format", "", "storage format (hdf5 or zarr; default from config)")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	tag, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	data := []byte(strings.TrimSpace(args[0]))
	if tag == ncfilter.FormatHDF5 {
		if data, err = hex.DecodeString(string(data)); err != nil {
			return fmt.Errorf("invalid hex: %w", err)
		}
	}

	r := newRegistry(nil)
	defer r.Finalize()

	specs, err := r.DecodeFilters(tag, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ncfilter.FormatSpecList(specs))
	return nil
}

package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/robert-malhotra/go-ncfilter/ncfilter"
)

var planCmd = &cobra.Command{
	Use:   "plan <file.yaml>",
	Short: "Plan filters and chunking for the variables in a YAML file",
	Long: `Plan reads dimensions and variables from a YAML file and prints the
storage mode, chunk shape and filters each variable gets. Filter rules,
chunk overrides and thresholds come from the config file and flags.

Example input:

  dimensions:
    - {name: time, length: 12, unlimited: true}
    - {name: lat, length: 180}
  variables:
    - fqn: /tas
      dimensions: [time, lat]
      element_size: 4
      input_filters: ["2", "1,5"]`,
	Args: cobra.ExactArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().String("format", "", "storage format (hdf5 or zarr; default from config)")
	planCmd.Flags().StringArray("rule", nil, `output filter rule "fqn,spec" or "fqn,none" (repeatable)`)
	planCmd.Flags().String("chunks", "", `chunk overrides "dim/size,..."`)
	planCmd.Flags().Bool("suppress", false, "drop input filters unless a rule applies")
	planCmd.Flags().Bool("metrics", false, "print planner metrics to stderr")
	rootCmd.AddCommand(planCmd)
}

// planInput is the plan file layout.
type planInput struct {
	Dimensions []ncfilter.DimensionInfo `yaml:"dimensions"`
	Variables  []ncfilter.VariableInfo  `yaml:"variables"`
}

// planOutput is one planned variable as printed.
type planOutput struct {
	FQN       string   `yaml:"fqn"`
	Storage   string   `yaml:"storage"`
	Chunks    []int    `yaml:"chunks,flow,omitempty"`
	NumChunks uint64   `yaml:"num_chunks,omitempty"`
	Filters   []string `yaml:"filters,flow,omitempty"`
	Pipeline  string   `yaml:"pipeline,omitempty"` // Hex HDF5 filter pipeline message
	Codecs    string   `yaml:"codecs,omitempty"`   // Zarr JSON codec list
}

func runPlan(cmd *cobra.Command, args []string) error {
	tag, err := formatFlag(cmd)
	if err != nil {
		return err
	}

	dir, err := loadPlanFile(args[0])
	if err != nil {
		return err
	}

	var (
		reg *prometheus.Registry
		r   *ncfilter.Registry
	)
	if withMetrics, _ := cmd.Flags().GetBool("metrics"); withMetrics {
		reg = prometheus.NewRegistry()
		r = newRegistry(reg)
	} else {
		r = newRegistry(nil)
	}
	defer r.Finalize()

	p, err := newPlanner(cmd, r, tag, dir)
	if err != nil {
		return err
	}

	planned, err := p.PlanAll(dir)
	if err != nil {
		return err
	}

	out := make([]planOutput, 0, len(planned))
	for _, pv := range planned {
		po := planOutput{FQN: pv.FQN, Storage: pv.Layout.Storage.String()}
		if pv.Layout.Chunk != nil {
			po.Chunks = pv.Layout.Chunk.Sizes()
			if po.NumChunks, err = pv.Layout.Chunk.Count(pv.Dimensions); err != nil {
				return fmt.Errorf("variable %s: %w", pv.FQN, err)
			}
		}
		for _, s := range pv.Layout.Filters {
			po.Filters = append(po.Filters, ncfilter.FormatSpec(s))
		}
		if pv.Layout.HasFilters() {
			msg, err := r.EncodeFilters(tag, pv.Layout.Filters)
			if err != nil {
				return fmt.Errorf("variable %s: %w", pv.FQN, err)
			}
			switch tag {
			case ncfilter.FormatHDF5:
				po.Pipeline = hex.EncodeToString(msg)
			case ncfilter.FormatZarr:
				po.Codecs = string(msg)
			}
		}
		out = append(out, po)
	}

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}

	if reg != nil {
		return writeMetrics(cmd.ErrOrStderr(), reg)
	}
	return nil
}

// newPlanner builds a planner from the config file and command flags.
func newPlanner(cmd *cobra.Command, r *ncfilter.Registry, tag ncfilter.FormatTag, dims ncfilter.DimensionDirectory) (*ncfilter.Planner, error) {
	p := &ncfilter.Planner{
		Registry:             r,
		Format:               tag,
		Dimensions:           dims,
		Suppress:             Cfg.Filters.Suppress,
		MinChunkBytes:        Cfg.Chunking.MinChunkBytes,
		UnlimitedWindowBytes: Cfg.Chunking.UnlimitedWindowBytes,
	}
	if Cfg.Chunking.Balanced {
		p.BalancedChunkBytes = Cfg.Chunking.DefaultChunkBytes
	}
	if cmd.Flags().Changed("suppress") {
		p.Suppress, _ = cmd.Flags().GetBool("suppress")
	}

	if err := p.AddRules(Cfg.Filters.Rules...); err != nil {
		return nil, fmt.Errorf("config filters.rules: %w", err)
	}
	rules, _ := cmd.Flags().GetStringArray("rule")
	if err := p.AddRules(rules...); err != nil {
		return nil, fmt.Errorf("--rule: %w", err)
	}

	overrides := Cfg.Chunking.Overrides
	if cmd.Flags().Changed("chunks") {
		overrides, _ = cmd.Flags().GetString("chunks")
	}
	co, err := ncfilter.ParseChunkOverrides(overrides)
	if err != nil {
		return nil, err
	}
	p.ChunkOverrides = co
	return p, nil
}

func loadPlanFile(path string) (*ncfilter.MemDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var in planInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing plan file %s: %w", path, err)
	}

	dir := ncfilter.NewMemDirectory()
	for _, d := range in.Dimensions {
		dir.AddDimension(d)
	}
	for _, v := range in.Variables {
		if err := dir.AddVariable(v); err != nil {
			return nil, fmt.Errorf("plan file %s: %w", path, err)
		}
	}
	return dir, nil
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/dashgen-org/dashgen/config"
	"github.com/dashgen-org/dashgen/dataset"
	"github.com/dashgen-org/dashgen/engine"
	"github.com/dashgen-org/dashgen/registry"
)

var (
	flagConfig  string
	flagOut     string
	flagFormat  string
	flagPolicy  string
	flagStore   string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "dashgen",
		Short:         "Generate interactive HTML dashboards from tabular data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	buildCmd := &cobra.Command{
		Use:   "build <datafile>",
		Short: "Build a dashboard from a data file",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	buildCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "dashboard configuration file (YAML or JSON)")
	buildCmd.Flags().StringVarP(&flagOut, "out", "o", "dashboard.html", "output HTML file")
	buildCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "data format: csv, json, or excel (default: sniff)")
	buildCmd.Flags().StringVar(&flagPolicy, "policy", "", "auto-configuration policy file (TOML)")
	buildCmd.Flags().StringVar(&flagStore, "store", "", "persist the dashboard under this directory")
	buildCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	suggestCmd := &cobra.Command{
		Use:   "suggest <datafile>",
		Short: "Print the auto-generated configuration for a data file",
		Args:  cobra.ExactArgs(1),
		RunE:  runSuggest,
	}
	suggestCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "data format: csv, json, or excel (default: sniff)")
	suggestCmd.Flags().StringVar(&flagPolicy, "policy", "", "auto-configuration policy file (TOML)")

	root.AddCommand(buildCmd, suggestCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var raw map[string]any
	if flagConfig != "" {
		b, err := os.ReadFile(flagConfig)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(b, &raw); err != nil {
			return fmt.Errorf("parse config %s: %w", flagConfig, err)
		}
	}

	opts, err := buildOptions(args[0])
	if err != nil {
		return err
	}

	d, err := engine.Build(data, raw, opts...)
	if err != nil {
		return err
	}
	for _, w := range d.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	if flagStore != "" {
		store, err := registry.NewStore(flagStore)
		if err != nil {
			return err
		}
		if err := store.Save(d, data); err != nil {
			return err
		}
		fmt.Printf("stored dashboard %s under %s\n", d.ID, flagStore)
	}

	if err := os.WriteFile(flagOut, d.Document.Bytes(), 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d records, %d charts)\n", flagOut, d.Table.NumRows(), len(d.Config.Charts))
	return nil
}

func runSuggest(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	format, err := resolveFormat(args[0])
	if err != nil {
		return err
	}
	table, err := dataset.Load(data, format)
	if err != nil {
		return err
	}

	policy, err := resolvePolicy()
	if err != nil {
		return err
	}

	suggested := config.Suggest(table, policy)
	out, err := yaml.Marshal(suggested)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}

func buildOptions(dataPath string) ([]engine.Option, error) {
	format, err := resolveFormat(dataPath)
	if err != nil {
		return nil, err
	}
	policy, err := resolvePolicy()
	if err != nil {
		return nil, err
	}

	opts := []engine.Option{
		engine.WithFormat(format),
		engine.WithPolicy(policy),
	}
	if flagVerbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		opts = append(opts, engine.WithLogger(logger))
	}
	return opts, nil
}

// resolveFormat honors an explicit --format flag, then the file extension,
// then falls back to sniffing.
func resolveFormat(dataPath string) (dataset.Format, error) {
	switch strings.ToLower(flagFormat) {
	case "":
	case "csv":
		return dataset.FormatCSV, nil
	case "json":
		return dataset.FormatJSON, nil
	case "excel", "xlsx":
		return dataset.FormatExcel, nil
	default:
		return dataset.FormatAuto, fmt.Errorf("unknown format %q", flagFormat)
	}

	switch strings.ToLower(filepath.Ext(dataPath)) {
	case ".csv":
		return dataset.FormatCSV, nil
	case ".json":
		return dataset.FormatJSON, nil
	case ".xlsx", ".xls":
		return dataset.FormatExcel, nil
	}
	return dataset.FormatAuto, nil
}

func resolvePolicy() (config.Policy, error) {
	if flagPolicy == "" {
		return config.DefaultPolicy(), nil
	}
	return config.LoadPolicy(flagPolicy)
}

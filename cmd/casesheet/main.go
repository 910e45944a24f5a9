package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/config"
	"github.com/ajitpratap0/casesheet/pkg/logger"
)

var version = "0.1.0"

// globalFlags are shared by every command.
type globalFlags struct {
	configFile       string
	logLevel         string
	pageRows         int
	maxResidentPages int
}

func main() {
	err := newRootCommand().Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "casesheet",
		Short: "casesheet - paged case store for tabular data",
		Long: `casesheet loads delimited text into a paged, column-typed case store
and renders its dictionary and cases.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configFile, "config", "", "Path to a YAML configuration file")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().IntVar(&flags.pageRows, "page-rows", 0, "Rows per datasheet page")
	root.PersistentFlags().IntVar(&flags.maxResidentPages, "max-resident-pages", 0, "Pages kept in memory: 0 = unbounded, -1 = automatic")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "casesheet v%s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})
	root.AddCommand(importCommand(&flags), exportCommand(&flags), dictCommand(&flags))
	return root
}

// loadConfig reads the configuration file, applies explicitly set flags
// and initializes the global logger.
func loadConfig(cmd *cobra.Command, flags *globalFlags) (*config.Config, error) {
	cfg := config.Default()
	if flags.configFile != "" {
		loaded, err := config.Load(flags.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	pf := cmd.Flags()
	if pf.Changed("log-level") {
		cfg.Logging.Level = flags.logLevel
	}
	if pf.Changed("page-rows") {
		cfg.Paging.PageRows = flags.pageRows
	}
	if pf.Changed("max-resident-pages") {
		cfg.Paging.MaxResidentPages = flags.maxResidentPages
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return nil, err
	}
	logger.Get().Debug("configuration loaded",
		zap.String("config_file", flags.configFile),
		zap.Int("page_rows", cfg.Paging.PageRows),
		zap.Int("max_resident_pages", cfg.Paging.MaxResidentPages))
	return cfg, nil
}

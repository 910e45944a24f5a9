package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/casesheet/pkg/cases"
	"github.com/ajitpratap0/casesheet/pkg/clipboard"
	"github.com/ajitpratap0/casesheet/pkg/config"
	"github.com/ajitpratap0/casesheet/pkg/datasheet"
	errs "github.com/ajitpratap0/casesheet/pkg/errors"
	"github.com/ajitpratap0/casesheet/pkg/logger"
	"github.com/ajitpratap0/casesheet/pkg/sheet"
	"github.com/ajitpratap0/casesheet/pkg/textimport"
)

// openStore imports path into a new data store.
func openStore(cfg *config.Config, path string) (*sheet.DataStore, datasheet.Options, error) {
	log := logger.Get().With(zap.String("component", "casesheet-cli"), zap.String("file", path))

	f, err := os.Open(path) //nolint:gosec // G304: path comes from the command line
	if err != nil {
		return nil, datasheet.Options{}, errs.Wrap(err, errs.ErrorTypeIO, "failed to open input")
	}
	defer f.Close()

	importOpts, err := datasheet.OptionsFromConfig(cfg.Paging, cases.NewProto())
	if err != nil {
		return nil, datasheet.Options{}, err
	}
	imp, err := textimport.New(f, cfg.Import, importOpts)
	if err != nil {
		return nil, datasheet.Options{}, err
	}
	defer imp.Close()
	for !imp.Done() {
		if err := imp.Step(cfg.Import.ChunkRecords); err != nil {
			return nil, datasheet.Options{}, err
		}
		log.Debug("import progress", zap.Int("records", imp.Records()))
	}
	dict, r, err := imp.Result()
	if err != nil {
		return nil, datasheet.Options{}, err
	}

	opts, err := datasheet.OptionsFromConfig(cfg.Paging, dict.Proto())
	if err != nil {
		_ = r.Close()
		return nil, datasheet.Options{}, err
	}
	ds, err := sheet.NewDataStore(dict, opts)
	if err != nil {
		_ = r.Close()
		return nil, datasheet.Options{}, err
	}
	if err := ds.SetReader(r); err != nil {
		_ = ds.Close()
		return nil, datasheet.Options{}, err
	}
	log.Info("input loaded",
		zap.Int("variables", ds.ColumnCount()),
		zap.Int("cases", ds.RowCount()),
		zap.String("separator", string(imp.Separator())))
	return ds, opts, nil
}

// printModel writes every cell of m as aligned columns under its titles.
func printModel(w io.Writer, m sheet.Model, rowTitles bool) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	titles := make([]string, 0, m.ColumnCount()+1)
	if rowTitles {
		titles = append(titles, "")
	}
	for col := 0; col < m.ColumnCount(); col++ {
		titles = append(titles, m.ColumnTitle(col))
	}
	fmt.Fprintln(tw, strings.Join(titles, "\t"))
	for row := 0; row < m.RowCount(); row++ {
		cells := make([]string, 0, len(titles))
		if rowTitles {
			cells = append(cells, m.RowTitle(row))
		}
		for col := 0; col < m.ColumnCount(); col++ {
			s, err := m.GetString(row, col)
			if err != nil {
				return err
			}
			cells = append(cells, strings.TrimSpace(s))
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func importCommand(flags *globalFlags) *cobra.Command {
	var showLabels, stats bool
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load delimited text and print its variables and cases",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			ds, _, err := openStore(cfg, args[0])
			if err != nil {
				return err
			}
			defer ds.Close()
			ds.SetShowLabels(showLabels)

			out := cmd.OutOrStdout()
			vs := sheet.NewVarStore(ds.Dictionary())
			defer vs.Close()
			if err := printModel(out, vs, false); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if err := printModel(out, ds, true); err != nil {
				return err
			}
			if stats {
				st := ds.Stats()
				fmt.Fprintf(out, "\npages=%d resident=%d page_ins=%d page_outs=%d spill_bytes=%d\n",
					st.Pages, st.ResidentPages, st.PageIns, st.PageOuts, st.SpillBytes)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showLabels, "labels", false, "Show value labels instead of values")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print paging statistics")
	return cmd
}

func exportCommand(flags *globalFlags) *cobra.Command {
	var formatName string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Load delimited text and render all cases as text, HTML or JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			ds, opts, err := openStore(cfg, args[0])
			if err != nil {
				return err
			}
			defer ds.Close()
			if ds.RowCount() == 0 || ds.ColumnCount() == 0 {
				return nil
			}

			snap, err := clipboard.Copy(ds, clipboard.Range{
				Row1: ds.RowCount() - 1,
				Col1: ds.ColumnCount() - 1,
			}, opts)
			if err != nil {
				return err
			}
			defer snap.Close()

			out := cmd.OutOrStdout()
			switch formatName {
			case "text":
				s, err := snap.Text()
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, s)
				return err
			case "html":
				s, err := snap.HTML()
				if err != nil {
					return err
				}
				_, err = io.WriteString(out, s)
				return err
			case "json":
				data, err := snap.JSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			return errs.Newf(errs.ErrorTypeValidation, "unknown export format %q", formatName)
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "text", "Output format (text, html, json)")
	return cmd
}

func dictCommand(flags *globalFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "dict FILE",
		Short: "Print the inferred dictionary of a delimited text file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			ds, _, err := openStore(cfg, args[0])
			if err != nil {
				return err
			}
			defer ds.Close()

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := ds.Dictionary().MarshalJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}
			vs := sheet.NewVarStore(ds.Dictionary())
			defer vs.Close()
			return printModel(out, vs, true)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the dictionary as JSON")
	return cmd
}

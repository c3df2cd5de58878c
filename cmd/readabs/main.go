// Package main provides the CLI entry point for readabs.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/readabs/readabs-go/internal/config"
	"github.com/readabs/readabs-go/internal/logging"
	"github.com/readabs/readabs-go/pkg/readabs"
	"github.com/readabs/readabs-go/pkg/readabs/models"
	"github.com/readabs/readabs-go/pkg/readabs/output"
	"github.com/readabs/readabs-go/pkg/readabs/transport"
	"github.com/spf13/cobra"
)

var (
	catNo       string
	seriesID    string
	titleFilter string
	logLevel    string
	logFormat   string

	outputPath string
	format     string
	pretty     bool
	firstOnly  bool
	recordSID  string
)

func main() {
	// A missing .env file is fine; the environment is used as is.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "readabs",
		Short: "Look up time-series tables and download them as date-indexed tables",
		Long: `readabs resolves a catalogue number or series id against the time-series
directory and downloads the matching spreadsheets, merging their data sheets
into a single table indexed by date.`,
		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&catNo, "catno", "", "Catalogue number, e.g. 6401.0")
	pf.StringVar(&seriesID, "series", "", "Series id, e.g. A2325846C (ignored when --catno is set)")
	pf.StringVar(&titleFilter, "title-filter", "", "Server-side table title filter")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from READABS_LOG_LEVEL)")
	pf.StringVar(&logFormat, "log-format", "", "Log format: text, json (default from READABS_LOG_FORMAT)")

	namesCmd := &cobra.Command{
		Use:   "names",
		Short: "List distinct table titles",
		Args:  cobra.NoArgs,
		RunE:  runNames,
	}

	linksCmd := &cobra.Command{
		Use:   "links [title substring]",
		Short: "List download links of tables whose title contains the substring",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLinks,
	}

	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Print directory entries as JSON",
		Args:  cobra.NoArgs,
		RunE:  runRecords,
	}
	recordsCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	recordsCmd.Flags().StringVar(&recordSID, "series-id", "", "Only entries with this series id")

	fetchCmd := &cobra.Command{
		Use:   "fetch [title substring]",
		Short: "Download matching tables and print them merged on Date",
		Args:  cobra.ExactArgs(1),
		RunE:  runFetch,
	}
	fetchCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (single table) or directory (default: stdout)")
	fetchCmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, json")
	fetchCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	fetchCmd.Flags().BoolVar(&firstOnly, "first", false, "Only the first matching table")

	dataflowsCmd := &cobra.Command{
		Use:   "dataflows",
		Short: "List dataflow ids of the statistics data API",
		Args:  cobra.NoArgs,
		RunE:  runDataflows,
	}

	rootCmd.AddCommand(namesCmd, linksCmd, recordsCmd, fetchCmd, dataflowsCmd)
	return rootCmd
}

// setup loads configuration, configures logging and builds the library options.
func setup() (readabs.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return readabs.Options{}, err
	}

	level, logFmt := cfg.Logging.Level, cfg.Logging.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		logFmt = logFormat
	}
	logger := logging.Setup(os.Stderr, level, logFmt)

	return readabs.Options{
		BaseURL:             cfg.Directory.BaseURL,
		TableTitle:          titleFilter,
		AllowErrorDocuments: cfg.Directory.AllowErrorDocuments,
		MaxConcurrency:      cfg.HTTP.MaxConcurrency,
		Logger:              logger,
		Transport: transport.NewHTTP(transport.Config{
			Timeout:        cfg.HTTP.Timeout,
			UserAgent:      cfg.HTTP.UserAgent,
			MaxConcurrency: cfg.HTTP.MaxConcurrency,
			RateLimit:      cfg.HTTP.RateLimit,
			Logger:         logger,
		}),
	}, nil
}

func newQuery() (*readabs.Query, error) {
	opts, err := setup()
	if err != nil {
		return nil, err
	}
	id, err := readabs.NewIdentifier(catNo, seriesID)
	if err != nil {
		return nil, err
	}
	return readabs.NewQuery(id, opts)
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt)
}

func runNames(cmd *cobra.Command, args []string) error {
	q, err := newQuery()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	names, err := q.TableNames(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func runLinks(cmd *cobra.Command, args []string) error {
	q, err := newQuery()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	substr := ""
	if len(args) == 1 {
		substr = args[0]
	}
	links, err := q.TableLinks(ctx, substr)
	if err != nil {
		return err
	}

	names, err := q.TableNames(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if url, ok := links[n]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", n, url)
		}
	}
	return nil
}

func runRecords(cmd *cobra.Command, args []string) error {
	q, err := newQuery()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var records []models.CatalogueRecord
	if recordSID != "" {
		records, err = q.SeriesRecords(ctx, recordSID)
	} else {
		records, err = q.Records(ctx)
	}
	if err != nil {
		return err
	}

	jsonData, err := output.RecordsToJSON(records, pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	if format != "csv" && format != "json" {
		return fmt.Errorf("invalid format: %s (must be csv or json)", format)
	}

	q, err := newQuery()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	var tables []*models.MergedTable
	if firstOnly {
		t, err := q.FirstTable(ctx, args[0])
		if err != nil {
			return err
		}
		tables = append(tables, t)
	} else {
		byTitle, err := q.Tables(ctx, args[0])
		if err != nil {
			return err
		}
		names, err := q.TableNames(ctx)
		if err != nil {
			return err
		}
		for _, n := range names {
			if t, ok := byTitle[n]; ok {
				tables = append(tables, t)
			}
		}
	}

	if len(tables) == 0 {
		slog.Warn("no table matched", "substring", args[0])
		return nil
	}

	switch {
	case outputPath == "":
		for _, t := range tables {
			if err := writeTable(cmd.OutOrStdout(), t); err != nil {
				return err
			}
		}
	case len(tables) == 1 && filepath.Ext(outputPath) != "":
		if err := writeTableFile(outputPath, tables[0]); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	default:
		if err := writeTableFiles(tables, outputPath); err != nil {
			return fmt.Errorf("failed to write table files: %w", err)
		}
	}

	return nil
}

func runDataflows(cmd *cobra.Command, args []string) error {
	opts, err := setup()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	ids, err := readabs.ListDataflows(ctx, opts.Transport)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func writeTable(w io.Writer, t *models.MergedTable) error {
	if format == "json" {
		jsonData, err := output.ToJSON(t, pretty)
		if err != nil {
			return fmt.Errorf("serialization failed: %w", err)
		}
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}
	return output.WriteCSV(w, t)
}

func writeTableFile(path string, t *models.MergedTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeTable(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeTableFiles(tables []*models.MergedTable, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, t := range tables {
		filename := filepath.Join(dir, fileName(t.Title)+"."+format)
		if err := writeTableFile(filename, t); err != nil {
			return err
		}
	}

	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// fileName turns a table title into a file name stem.
func fileName(title string) string {
	name := strings.Trim(unsafeChars.ReplaceAllString(title, "_"), "_.")
	if len(name) > 80 {
		name = name[:80]
	}
	if name == "" {
		name = "table"
	}
	return name
}

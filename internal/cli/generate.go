package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/synthline/firmforge/internal/config"
	"github.com/synthline/firmforge/internal/db"
	"github.com/synthline/firmforge/internal/engine"
	"github.com/synthline/firmforge/internal/randsrc"
	"github.com/synthline/firmforge/internal/reports"
)

type generateOptions struct {
	startYear   int
	endYear     int
	consultants int
	seed        int64
	outPath     string
	configPath  string
	reportsDir  string
	verbose     bool
}

func newGenerateCmd() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run a full simulation and write the dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.startYear, "start", 0, "first simulated year")
	flags.IntVar(&opts.endYear, "end", 0, "last simulated year")
	flags.IntVar(&opts.consultants, "consultants", 0, "initial headcount")
	flags.Int64Var(&opts.seed, "seed", 0, "PRNG seed")
	flags.StringVar(&opts.outPath, "out", "firmforge.db", "SQLite output path")
	flags.StringVar(&opts.configPath, "config", "", "YAML config overlay")
	flags.StringVar(&opts.reportsDir, "reports", "", "directory for derived report files (skipped when empty)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	cfg := config.Default()
	if opts.configPath != "" {
		if err := cfg.ApplyFile(opts.configPath); err != nil {
			return err
		}
	}
	flags := cmd.Flags()
	if flags.Changed("start") {
		cfg.StartYear = opts.startYear
	}
	if flags.Changed("end") {
		cfg.EndYear = opts.endYear
	}
	if flags.Changed("consultants") {
		cfg.InitialConsultants = opts.consultants
	}
	if flags.Changed("seed") {
		cfg.Seed = opts.seed
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := zerolog.InfoLevel
	if opts.verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	result, err := engine.New(cfg, log).Run()
	if err != nil {
		return err
	}

	database, err := db.OpenDB(opts.outPath)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Flush(database, result.Reference, result.Workforce, result.Projects, result.Payroll); err != nil {
		return fmt.Errorf("flushing to %s: %w", opts.outPath, err)
	}
	log.Info().Str("path", opts.outPath).Msg("dataset written")

	if opts.reportsDir != "" {
		if err := writeReports(opts.reportsDir, cfg, result, log); err != nil {
			return err
		}
	}

	printSummary(cmd.OutOrStdout(), result)
	return nil
}

// writeReports derives the three report files from the finished run.
// Report noise comes from a PRNG stream separate from the simulation's,
// so report tuning never perturbs the dataset.
func writeReports(dir string, cfg config.Config, result *engine.Result, log zerolog.Logger) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating reports directory: %w", err)
	}
	rng := randsrc.New(cfg.Seed)

	indirect := reports.IndirectCosts(result.Projects, rng, reports.DefaultIndirectCostParams())
	if err := writeFile(filepath.Join(dir, "indirect_costs.csv"), func(f *os.File) error {
		return reports.WriteIndirectCostsCSV(f, indirect)
	}); err != nil {
		return err
	}

	bench := reports.NonBillableTime(result.Workforce, result.Projects, result.Payroll, float64(cfg.WorkingHoursPerMonth))
	if err := writeFile(filepath.Join(dir, "non_billable_time.csv"), func(f *os.File) error {
		return reports.WriteNonBillableTimeCSV(f, bench)
	}); err != nil {
		return err
	}

	feedback := reports.ClientFeedback(result.Projects, rng)
	if err := writeFile(filepath.Join(dir, "client_feedback.json"), func(f *os.File) error {
		return reports.WriteClientFeedbackJSON(f, feedback)
	}); err != nil {
		return err
	}

	log.Info().Str("dir", dir).Msg("reports written")
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func printSummary(out interface{ Write([]byte) (int, error) }, result *engine.Result) {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintln(out, "Simulation summary")

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Year", "Headcount", "Hires", "Promotions", "Attrition", "Layoffs", "Projects"})
	for _, y := range result.Years {
		table.Append([]string{
			strconv.Itoa(y.Year),
			strconv.Itoa(y.Headcount),
			strconv.Itoa(y.Hires),
			strconv.Itoa(y.Promotions),
			strconv.Itoa(y.Attrition),
			strconv.Itoa(y.Layoffs),
			strconv.Itoa(y.ProjectsCreated),
		})
	}
	table.Render()

	fmt.Fprintf(out, "consultants: %d  projects: %d  payroll rows: %d\n",
		len(result.Workforce.Consultants()), len(result.Projects.All()), len(result.Payroll))
}

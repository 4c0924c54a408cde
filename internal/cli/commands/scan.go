package commands

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/YADRO-KNS/sebastes/internal/cli/config"
	"github.com/YADRO-KNS/sebastes/internal/cli/ui"
	"github.com/YADRO-KNS/sebastes/internal/processor"
	"github.com/YADRO-KNS/sebastes/internal/redfish"
	"github.com/YADRO-KNS/sebastes/internal/scanner"
)

var (
	scanAddress       string
	scanUsername      string
	scanPassword      string
	scanEntry         string
	scanOutput        string
	scanModule        string
	scanMaxModels     int
	scanMaxCollection int
	scanVerbose       bool
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan a Redfish service and generate its model library",
		Long: `Walk the target's resource tree starting at the entry point, sample every
distinct resource type and emit a typed Go library for it.

The scan process:
  1. Graph walk - one authenticated fetch per URI, wide collections sampled
  2. Synthesis - normalize every sampled payload into Go type definitions
  3. Assembly - write the library: models, canonical types, go.mod, index

Failures on single resources never abort the run; they are collected and
reported at the end.`,
		Example: `  # Scan a BMC, prompting for the password
  sebastes scan -a 10.0.0.5 -u admin

  # Scan into a directory with a custom module path
  sebastes scan -a bmc.lab:8443 -u admin -p secret -o ./out --module example.com/bmclib

  # Narrow scan for quick iteration
  sebastes scan -a 10.0.0.5 -u admin -m 50 -c 5`,
		RunE: runScan,
	}

	cmd.Flags().StringVarP(&scanAddress, "address", "a", "", "Target host or host:port")
	cmd.Flags().StringVarP(&scanUsername, "username", "u", "", "Basic auth user")
	cmd.Flags().StringVarP(&scanPassword, "password", "p", "", "Basic auth password (prompted when omitted)")
	cmd.Flags().StringVarP(&scanEntry, "entry", "e", "", "Entry point URI (default: /redfish/v1/)")
	cmd.Flags().StringVarP(&scanOutput, "output", "o", "", "Output directory (default: current directory)")
	cmd.Flags().StringVar(&scanModule, "module", "", "Module path of the generated library (default: redfishlib)")
	cmd.Flags().IntVarP(&scanMaxModels, "max-models", "m", 0, "Stop after this many models (default: 500)")
	cmd.Flags().IntVarP(&scanMaxCollection, "max-collection", "c", 0, "Follow at most this many members per collection (default: 50)")
	cmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "Log every request")

	return cmd
}

func runScan(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	successColor := color.New(color.FgGreen, color.Bold)
	infoColor := color.New(color.FgCyan)
	warningColor := color.New(color.FgYellow)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	applyScanFlags(cfg)

	if cfg.Address == "" {
		return fmt.Errorf("target address is required (flag --address or SEBASTES_ADDRESS)")
	}
	if cfg.Password == "" {
		prompt := &survey.Password{
			Message: fmt.Sprintf("Password for %s@%s:", cfg.Username, cfg.Address),
		}
		if err := survey.AskOne(prompt, &cfg.Password, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}

	log := zap.NewNop()
	if scanVerbose {
		log, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		defer log.Sync()
	}

	out := cmd.OutOrStdout()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	infoColor.Fprintf(out, "Scanning https://%s%s\n", cfg.Address, cfg.EntryPoint)

	client := redfish.NewClient(cfg.Address, cfg.Username, cfg.Password, redfish.WithLogger(log))
	status := ui.NewStatusLine(out, color.NoColor)

	s := scanner.New(client, scanner.Options{
		MaxModels:     cfg.MaxModels,
		MaxCollection: cfg.MaxCollection,
		Logger:        log,
		OnVisit: func(models int, uri string) {
			status.Update("%4d models - %s", models, uri)
		},
	})
	nodes, scanProblems := s.Scan(ctx, cfg.EntryPoint)
	status.Clear()

	infoColor.Fprintf(out, "Discovered %d models in %s\n\n", len(nodes), time.Since(startTime).Round(time.Millisecond))

	models := make([]string, 0, len(nodes))
	for _, n := range nodes {
		models = append(models, n.String())
	}
	ui.NumberedSection(out, "Models:", models, infoColor)

	var bar *ui.ProgressBar
	proc := processor.New(nodes, cfg.Output, processor.Options{
		ModulePath: cfg.Module,
		Logger:     log,
		OnUnit: func(done, total int, unit string) {
			if bar == nil {
				bar = ui.NewProgressBar(out, ui.ProgressBarOptions{
					Total:   total,
					Message: "Generating models",
					NoColor: color.NoColor,
				})
			}
			bar.Set(done)
		},
	})
	if err := proc.Generate(); err != nil {
		return err
	}
	if bar != nil {
		bar.Finish()
	}

	reportProblems(out, "Scan problems:", scanProblems, warningColor)
	reportProblems(out, "Processing problems:", proc.Problems(), warningColor)

	units := len(proc.Manifest()) - 1
	successColor.Fprintf(out, "✓ Generated %d units into %s (%s)\n",
		units, cfg.Output, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// applyScanFlags lays explicit flag values over the loaded configuration.
func applyScanFlags(cfg *config.Config) {
	if scanAddress != "" {
		cfg.Address = scanAddress
	}
	if scanUsername != "" {
		cfg.Username = scanUsername
	}
	if scanPassword != "" {
		cfg.Password = scanPassword
	}
	if scanEntry != "" {
		cfg.EntryPoint = scanEntry
	}
	if scanOutput != "" {
		cfg.Output = scanOutput
	}
	if scanModule != "" {
		cfg.Module = scanModule
	}
	if scanMaxModels > 0 {
		cfg.MaxModels = scanMaxModels
	}
	if scanMaxCollection > 0 {
		cfg.MaxCollection = scanMaxCollection
	}
}

func reportProblems(w io.Writer, title string, problems []scanner.Problem, c *color.Color) {
	items := make([]string, 0, len(problems))
	for _, p := range problems {
		items = append(items, p.String())
	}
	ui.NumberedSection(w, title, items, c)
}

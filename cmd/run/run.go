package run

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pagereaper/pagereaper/internal/artifact"
	"github.com/pagereaper/pagereaper/internal/browser"
	"github.com/pagereaper/pagereaper/internal/config"
	"github.com/pagereaper/pagereaper/internal/extract"
	"github.com/pagereaper/pagereaper/internal/orchestrator"
	"github.com/pagereaper/pagereaper/internal/queue"
	"github.com/pagereaper/pagereaper/internal/utils/logger"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/ratelimit"
)

// RunCmd processes the work queue until it is empty
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the work queue",
	Long: `Run opens a browser, visits every URL remaining in the work queue,
extracts post records from each page and writes one CSV artifact per URL.
An empty queue is seeded from the --seed JSON file. Progress is durable:
re-running continues with whatever is left.`,
	Run: func(cmd *cobra.Command, args []string) {
		applyFlags(cmd)
		if err := runQueue(); err != nil {
			fmt.Printf("Run failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var (
	seedFile   string
	outputDir  string
	stateDir   string
	timeoutSec int
	headless   bool
)

func init() {
	registerFlags(RunCmd)
}

func registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&seedFile, "seed", "f", "", "JSON array file seeding an empty queue")
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for CSV artifacts")
	cmd.Flags().StringVarP(&stateDir, "state-dir", "s", "", "Directory for the queue database")
	cmd.Flags().IntVarP(&timeoutSec, "timeout", "t", config.StallTimeoutSeconds, "Liveness timeout in seconds")
	cmd.Flags().BoolVar(&headless, "headless", config.Headless, "Run the browser without a window")
}

// applyFlags copies flag values over the config-file globals. Flags are
// parsed before LoadConfig runs, so only flags the user actually set may
// win; untouched flags leave the config values in place.
func applyFlags(cmd *cobra.Command) {
	config.SeedFile = seedFile
	if cmd.Flags().Changed("output-dir") {
		config.OutputDir = outputDir
	}
	if cmd.Flags().Changed("state-dir") {
		config.StateDir = stateDir
	}
	if cmd.Flags().Changed("timeout") {
		config.StallTimeoutSeconds = timeoutSec
	}
	if cmd.Flags().Changed("headless") {
		config.Headless = headless
	}
}

func runQueue() error {
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("failed to prepare directories: %w", err)
	}

	store, err := queue.Open(config.GetQueueDBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	// Seeding only happens on an empty queue, and only its failure is
	// fatal. Everything after this point degrades per item.
	items, err := store.Load()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		if config.SeedFile == "" {
			return fmt.Errorf("work queue is empty and no --seed file was given")
		}
		items, err = queue.SeedFromFile(store, config.SeedFile)
		if err != nil {
			return err
		}
		logger.Info("Seeded queue with %d URLs from %s", len(items), config.SeedFile)
	} else {
		logger.Info("Resuming with %d URLs remaining", len(items))
	}

	parser := extract.NewParser(config.GlobalConfig.Extractor)

	surface, err := browser.Launch(browser.Options{
		Headless:       config.Headless,
		ExpandSelector: config.GlobalConfig.Extractor.ExpandSelector,
		MaxRounds:      config.MaxScrollRounds,
		IntervalMs:     config.ScrollIntervalMs,
		StableRounds:   config.StableRounds,
	}, parser)
	if err != nil {
		return err
	}
	defer surface.Close()

	emitter, err := artifact.NewEmitter(config.OutputDir)
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions(len(items),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	o := orchestrator.New(store, surface, emitter, nil, orchestrator.Options{
		StallTimeout: config.StallTimeout(),
		SettleDelay:  config.SettleDelay(),
		Pause:        ratelimit.New(1, ratelimit.Per(config.ItemPause())),
		Status:       &barSink{bar: bar},
	})

	sum, err := o.Run(context.Background())
	if err != nil {
		return err
	}

	logger.Info("Run complete: %d processed (%d success, %d empty, %d stalled, %d error)",
		sum.Total(), sum.Succeeded, sum.Empty, sum.Stalled, sum.Errored)
	return nil
}

// barSink renders the rolling status line and per-item progress on a
// progress bar. The orchestrator works the same with no sink at all.
type barSink struct {
	bar *progressbar.ProgressBar
}

func (s *barSink) ReportStatus(text string) {
	s.bar.Describe(text)
}

func (s *barSink) ItemCompleted(item string, kind orchestrator.OutcomeKind) {
	s.bar.Describe(fmt.Sprintf("%s: %s", kind, item))
	s.bar.Add(1)
}

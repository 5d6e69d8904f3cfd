package cmd

import (
	"fmt"

	"github.com/pagereaper/pagereaper/cmd/queue"
	"github.com/pagereaper/pagereaper/cmd/run"
	"github.com/pagereaper/pagereaper/internal/config"

	"github.com/spf13/cobra"
)

var (
	// Version information
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"

	rootCmd = &cobra.Command{
		Use:   "pagereaper",
		Short: "A browser-driven page content harvester",
		Long: `Pagereaper drives a real browser through a queue of page URLs,
loads each page's dynamic content, extracts post records and writes
one CSV artifact per URL. Progress is durable: an interrupted run
resumes from the remaining queue.`,
		Version: version,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("pagereaper %s\n", version)
			fmt.Printf("Build time: %s\n", buildTime)
			fmt.Printf("Git commit: %s\n", gitCommit)
		},
	}
)

// SetVersion sets the version information
func SetVersion(v, bt, gc string) {
	version = v
	buildTime = bt
	gitCommit = gc
	rootCmd.Version = v
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(run.RunCmd)
	rootCmd.AddCommand(queue.QueueCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	config.LoadConfig()
}

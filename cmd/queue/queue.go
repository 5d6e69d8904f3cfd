package queue

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pagereaper/pagereaper/internal/config"
	queuestore "github.com/pagereaper/pagereaper/internal/queue"
)

func listQueue() error {
	if err := config.EnsureDirs(); err != nil {
		return err
	}

	store, err := queuestore.Open(config.GetQueueDBPath())
	if err != nil {
		return err
	}
	defer store.Close()

	items, err := store.Load()
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("Work queue is empty")
		return nil
	}

	fmt.Printf("%-6s %s\n", "POS", "URL")
	fmt.Println(strings.Repeat("-", 80))
	for i, url := range items {
		fmt.Printf("%-6d %s\n", i+1, url)
	}
	fmt.Printf("\n%d URLs remaining\n", len(items))

	return nil
}

// QueueCmd lists the remaining work items
var QueueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List remaining work items",
	Long:  `List the URLs still waiting in the durable work queue, in processing order.`,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("state-dir") {
			config.StateDir = stateDir
		}
		if err := listQueue(); err != nil {
			fmt.Printf("Error listing queue: %v\n", err)
			os.Exit(1)
		}
	},
}

var stateDir string

func init() {
	QueueCmd.Flags().StringVarP(&stateDir, "state-dir", "s", "", "Directory for the queue database")
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/pagereaper/pagereaper/cmd"
)

// Version information set during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Set version information in cmd package
	cmd.SetVersion(Version, BuildTime, GitCommit)

	// Set up signal handling for immediate shutdown. The work queue is
	// durable, so an interrupted run resumes where it stopped.
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalChan
		os.Exit(0)
	}()

	cmd.Execute()
}

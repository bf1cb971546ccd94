package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brainbrowser",
	Short: "Browsing graph engine",
	Long: `brainbrowser records browsing sessions as a graph of neurons
connected by synapses and serves it over HTTP and websockets.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, inspectCmd)
}

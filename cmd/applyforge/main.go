// Package main provides the entry point for the applyforge document
// generation CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "applyforge",
	Short: "AI job-application document generator",
	Long:  "applyforge generates grounded, single-page resumes and cover letters tailored to job postings, driving each request through a reviewable step workflow backed by a fallback chain of AI agents.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package main provides the entry point for the DomainScan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for DomainScan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "domainscan",
		Short: "OSINT reconnaissance tool for target domains",
		Long: `DomainScan performs passive and active reconnaissance against a target
domain. It enumerates subdomains, resolves DNS, collects WHOIS data,
crawls live and archived pages, and extracts exposed email addresses and
credential material from HTML, JavaScript, and rendered content.

Use it only against domains you are authorized to assess.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

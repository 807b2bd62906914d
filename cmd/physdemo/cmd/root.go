// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cmd is physdemo's cobra command tree, following root.go's
// shape in the performance-analysis example: a package-level rootCmd,
// persistent flags bound in init, and an Execute entry point called
// from main.
package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/SunGuangdong/physgo/pkg/config"
)

var (
	verbose    bool
	configPath string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "physdemo",
	Short: "Drives the deactivator and hull builder against a synthetic scene",
	Long: `physdemo is a demonstration CLI for the deactivation and convex-hull
subsystems: it builds a synthetic scene of constraint chains and
procedurally generated rocks, ticks the deactivator against it, and
reports or streams the resulting statistics.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose {
			log.SetFlags(log.Ltime | log.Lmicroseconds)
		}
		return nil
	},
}

// Execute runs the root command, following Execute's shape in
// root.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a physdemo config file")
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"fmt"
	"os"

	"github.com/AleutianAI/genescope/cmd/genescope/config"
	"github.com/AleutianAI/genescope/pkg/ux"
	"github.com/AleutianAI/genescope/services/genescope/pipeline"
	"github.com/spf13/cobra"
)

const serviceName = "genescope"

var (
	configPath       string
	personalityLevel string
	cfg              *config.GeneScopeConfig

	analyzeMode     string
	analyzeFilePath string
	analyzeOut      string

	rootCmd = &cobra.Command{
		Use:   "genescope",
		Short: "Pathway enrichment and protein interaction analysis backed by STRING",
		Long: `GeneScope reads a gene list from an Excel or CSV file, queries the
STRING database for enriched pathways and protein interactions, and
produces spreadsheets and an interactive network view.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if personalityLevel != "" {
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			} else {
				ux.InitPersonality()
			}
			path := configPath
			if path == "" {
				path = os.Getenv(config.EnvConfigPath)
			}
			loaded, err := config.Load(path)
			if err != nil {
				return err
			}
			cfg = loaded
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a gene file and write the result workbook",
		Example: `  genescope analyze --file genes.xlsx
  genescope analyze --mode ppi --file genes.csv --out results/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := pipeline.ParseMode(analyzeMode)
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), cfg, mode, analyzeFilePath, analyzeOut)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the GeneScope version",
		// Skip config loading.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "genescope %s\n", version)
		},
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	configInitCmd = &cobra.Command{
		Use:               "init [path]",
		Short:             "Write the default configuration",
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			ux.Success("Wrote " + path)
			return nil
		},
	}
)

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"Path to the YAML config (default $GENESCOPE_CONFIG or ./genescope.yaml)")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "output", "",
		"Output style: full, minimal or machine (scripting)")

	rootCmd.AddCommand(serveCmd)

	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&analyzeMode, "mode", "m", string(pipeline.ModeCombined),
		"Analysis type: pathway, ppi or combined")
	analyzeCmd.Flags().StringVarP(&analyzeFilePath, "file", "f", "", "Gene file (.xlsx or .csv)")
	analyzeCmd.Flags().StringVarP(&analyzeOut, "out", "o", ".",
		"Output directory, or a .xlsx path")
	_ = analyzeCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(versionCmd)

	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
}

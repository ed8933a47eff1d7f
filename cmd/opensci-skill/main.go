// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the opensci-skill CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the opensci-skill CLI.
var rootCmd = &cobra.Command{
	Use:   "opensci-skill",
	Short: "Build agent-ready library skills from docs and source",
	Long: `opensci-skill turns a scientific library's documentation and Go source
into skill assets an agent retrieves instead of reading whole source trees:
converted docs, a queryable symbol index, a public API dump, a module map,
and verified code snippets.

Each stage is a subcommand: rst, docs, symbols, api, modules, and verify.
Stages write their outputs under assets/ and compose into a skill-building
pipeline.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./opensci-skill.yaml or ~/.config/opensci-skill/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("opensci-skill")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "opensci-skill"))
		}
	}

	viper.SetEnvPrefix("OPENSCI_SKILL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// Copyright 2019 - 2025 The Samply Community
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"

	"github.com/samply/tabularctl/config"
	"github.com/samply/tabularctl/data"
	"github.com/samply/tabularctl/log"
	"github.com/spf13/cobra"
)

var cfgFile string
var logLevel string
var noProgress bool

// settings holds the merged configuration of the current invocation
var settings *config.Config

func loadConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	settings = cfg

	logger := log.Init(cfg.LogLevel, cmd.ErrOrStderr())
	cmd.SetContext(log.WithLogger(cmd.Context(), logger))
	return nil
}

func templateSet(filename string) (*data.TemplateSet, error) {
	if filename == "" {
		set := data.DefaultTemplateSet()
		return &set, nil
	}
	return data.ReadTemplateFile(filename)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tabularctl",
	Short: "Generate Measures in Tabular Models from the Command Line",
	Long: `tabularctl is a command line tool to author tabular models (.bim files)
as used by Power BI and Analysis Services.

Currently you can generate measures in bulk from formula templates, list the
measures of a model and extract the SQL source tables of its partitions.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./tabularctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&noProgress, "no-progress", "", false, "don't show progress bar")
}

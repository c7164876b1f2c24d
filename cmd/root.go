// Package cmd holds the CLI entry points.
package cmd

import (
	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "selfsuffient",
	Short: "Backend for managing self-sufficient lifestyle projects",
	Long: "selfsuffient runs the REST backend that tracks projects, diaries,\n" +
		"galleries, blogs, tasks, routines, checklists and personal finances.",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"path to the config file (default config.yaml)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remindCmd)
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

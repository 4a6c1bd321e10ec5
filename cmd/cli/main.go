package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/spotfake/cmd/cli/library"
	"github.com/myrjola/spotfake/cmd/cli/pack"
	"github.com/spf13/cobra"
)

func init() {
	// The .env file is optional, it's only used for local development.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rootCmd.AddGroup(pack.Group)
	rootCmd.AddCommand(pack.Export)
	rootCmd.AddCommand(pack.Import)
	rootCmd.AddGroup(library.Group)
	rootCmd.AddCommand(library.List)
	rootCmd.AddCommand(library.Remove)
}

var rootCmd = &cobra.Command{
	Use:  "spotfake-cli",
	Long: `Command line utilities for Spotfake https://github.com/myrjola/spotfake`,
	Run: func(cmd *cobra.Command, args []string) {
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}

package main

import (
	"fmt"
	"os"

	"github.com/benvon/cinemate/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cinemate-configure",
		Short: "Configuration tool for the CineMate API",
		Long:  "CLI tool for runtime settings stored in the database and for checking domain files",
	}

	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewCorsCmd())
	rootCmd.AddCommand(commands.NewDomainsCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

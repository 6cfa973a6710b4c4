package main

import (
	"github.com/depwatch/depwatch/internal/log"
)

var Version = "dev"

func init() {
	rootCmd.PersistentFlags().StringVarP(&projectDir, "dir", "C", ".", "Project directory to operate on")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	toggleCmd.AddCommand(toggleBranchCheckCmd, toggleFileCheckCmd, toggleDeleteModulesCmd)
	rootCmd.AddCommand(versionCmd, checkCmd, cleanInstallCmd, detectCmd, watchCmd, toggleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

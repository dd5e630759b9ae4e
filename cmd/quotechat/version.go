package main

import (
	"fmt"
	"strings"

	"github.com/helpcar/quotechat"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of quotechat",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "quotechat version %s\n", version())
	},
}

func version() string {
	return strings.TrimSpace(quotechat.Version)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

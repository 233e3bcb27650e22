package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Prints the anonymous uid your bookmarks are stored under.",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(false)
		defer a.close()
		fmt.Println(a.Uid(cmd.Context()))
	},
}

package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <recipe id>",
	Short: "Prints a recipe's ingredients, nutrition and steps.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(true)
		defer a.close()
		ctx := cmd.Context()

		view, err := a.service.Recipe(ctx, a.Uid(ctx), args[0])
		if err != nil {
			a.fatal("failed to get recipe", err)
		}
		renderDetail(view)
	},
}

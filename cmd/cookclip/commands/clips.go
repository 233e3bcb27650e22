package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(clipsCmd)
}

var clipsCmd = &cobra.Command{
	Use:   "clips",
	Short: "Lists your bookmarked recipes and their comments.",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(true)
		defer a.close()
		ctx := cmd.Context()

		views, err := a.service.Bookmarks(ctx, a.Uid(ctx))
		if err != nil {
			a.fatal("failed to list bookmarks", err)
		}
		if len(views) == 0 {
			fmt.Println("no bookmarks yet, add one with `cookclip clip add <recipe id>`")
			return
		}
		renderViews(views, true)
	},
}

package commands

import (
	"cookclip/lib/bookmark"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

func init() {
	for _, cmd := range []*cobra.Command{clipAddCmd, clipEditCmd, clipToggleCmd} {
		cmd.Flags().StringP("comment", "m", "", "The comment to attach, prompted for when omitted.")
	}
	clipCmd.AddCommand(clipAddCmd, clipEditCmd, clipRmCmd, clipToggleCmd, clipDedupeCmd)
	rootCmd.AddCommand(clipCmd)
}

// commentFlag returns --comment when given, otherwise it asks for one.
func commentFlag(a *app, cmd *cobra.Command) string {
	if cmd.Flags().Changed("comment") {
		comment, _ := cmd.Flags().GetString("comment")
		return comment
	}
	ui := input.DefaultUI()
	comment, err := ui.Ask("comment (optional):", &input.Options{
		Default:     "",
		HideDefault: true,
		Loop:        false,
	})
	if err != nil {
		a.fatal("failed to read comment", err)
	}
	return comment
}

var clipCmd = &cobra.Command{
	Use:   "clip",
	Short: "Adds, edits and removes bookmarks.",
}

var clipAddCmd = &cobra.Command{
	Use:   "add <recipe id> [--comment <text>]",
	Short: "Bookmarks a recipe, updating the comment if it is already bookmarked.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(false)
		defer a.close()
		ctx := cmd.Context()
		uid := a.Uid(ctx)

		clip, err := a.service.Bookmark(ctx, uid, args[0], commentFlag(a, cmd))
		if err != nil {
			a.fatal("failed to bookmark recipe", err)
		}
		fmt.Printf("bookmarked recipe %s (clip %s)\n", clip.RecipeID, clip.ID)
	},
}

var clipEditCmd = &cobra.Command{
	Use:   "edit <recipe id> [--comment <text>]",
	Short: "Replaces the comment on a bookmarked recipe.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(false)
		defer a.close()
		ctx := cmd.Context()
		uid := a.Uid(ctx)

		clip, err := a.service.EditComment(ctx, uid, args[0], commentFlag(a, cmd))
		if err != nil {
			a.fatal("failed to edit comment", err)
		}
		fmt.Printf("updated comment on recipe %s\n", clip.RecipeID)
	},
}

var clipRmCmd = &cobra.Command{
	Use:   "rm <recipe id>",
	Short: "Removes every bookmark you hold on a recipe.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(false)
		defer a.close()
		ctx := cmd.Context()

		removed, err := a.service.Unbookmark(ctx, a.Uid(ctx), args[0])
		if err != nil {
			a.fatal("failed to remove bookmark", err)
		}
		if removed == 0 {
			fmt.Printf("recipe %s was not bookmarked\n", args[0])
			return
		}
		fmt.Printf("removed %d bookmark(s) on recipe %s\n", removed, args[0])
	},
}

var clipToggleCmd = &cobra.Command{
	Use:   "toggle <recipe id> [--comment <text>]",
	Short: "Removes the bookmark on a recipe, or creates one with a comment if there is none.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(false)
		defer a.close()
		ctx := cmd.Context()
		uid := a.Uid(ctx)

		outcome, err := a.service.Toggle(ctx, uid, args[0])
		if err != nil {
			a.fatal("failed to toggle bookmark", err)
		}
		if outcome == bookmark.OutcomeRemoved {
			fmt.Printf("removed bookmark on recipe %s\n", args[0])
			return
		}

		clip, err := a.service.Bookmark(ctx, uid, args[0], commentFlag(a, cmd))
		if err != nil {
			a.fatal("failed to bookmark recipe", err)
		}
		fmt.Printf("bookmarked recipe %s (clip %s)\n", clip.RecipeID, clip.ID)
	},
}

var clipDedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Deletes duplicate bookmarks, keeping the newest clip per recipe.",
	Run: func(cmd *cobra.Command, args []string) {
		a := newApp(false)
		defer a.close()
		ctx := cmd.Context()

		deleted, err := a.service.Dedupe(ctx, a.Uid(ctx))
		if err != nil {
			a.fatal("failed to dedupe bookmarks", err)
		}
		fmt.Printf("deleted %d duplicate clip(s)\n", len(deleted))
	},
}

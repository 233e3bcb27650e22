package commands

import (
	"cookclip/lib/platforms/foodsafety"
	"cookclip/lib/util/serviceutil"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tcnksm/go-input"
)

var (
	browseFilter *string
	browseAll    *bool
)

func init() {
	browseFilter = browseCmd.Flags().StringP("filter", "f", "name", "The field to search, one of: name, ingredient.")
	browseAll = browseCmd.Flags().Bool("all", false, "Load every page without prompting.")
	rootCmd.AddCommand(browseCmd)
}

var browseCmd = &cobra.Command{
	Use:   "browse [search term] [--filter name|ingredient] [--all]",
	Short: "Pages through the recipe catalog, optionally searching by name or ingredient.",
	Run: func(cmd *cobra.Command, args []string) {
		field, err := foodsafety.ParseField(*browseFilter)
		if err != nil {
			serviceutil.Fatal("invalid filter", err)
		}
		query := foodsafety.Query{
			Term:  strings.TrimSpace(strings.Join(args, " ")),
			Field: field,
		}

		a := newApp(true)
		defer a.close()
		ctx := cmd.Context()
		uid := a.Uid(ctx)

		controller := a.service.Browse(query)
		ui := input.DefaultUI()
		shown := 0
		for {
			_, err := controller.LoadNext(ctx)
			if err != nil {
				a.fatal("failed to load recipes", err)
			}

			items := controller.Items()
			if len(items) > shown {
				renderViews(a.service.ReconcileItems(ctx, uid, items[shown:]), false)
				shown = len(items)
			}

			if !controller.HasNext() {
				break
			}
			if !*browseAll && !confirm(ui, fmt.Sprintf("%d recipes shown, load more?", shown)) {
				break
			}
		}

		if shown > 0 || !query.Active() || query.Field != foodsafety.FieldName {
			fmt.Printf("%d recipes\n", shown)
			return
		}

		fmt.Println("no recipes found")
		names, err := a.service.Suggest(ctx, query.Term)
		if err != nil {
			a.fatal("failed to compute suggestions", err)
		}
		if len(names) > 0 {
			fmt.Printf("did you mean: %s\n", strings.Join(names, ", "))
		}
	},
}

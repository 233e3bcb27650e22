package commands

import (
	"cookclip/lib/bookmark"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/tcnksm/go-input"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	return t
}

func bookmarkMark(view bookmark.View) string {
	if view.IsBookmarked {
		return "★"
	}
	return "☆"
}

func renderViews(views []bookmark.View, showComment bool) {
	t := newTable()
	header := table.Row{"", "ID", "Title", "Category", "Method"}
	if showComment {
		header = append(header, "Comment")
	}
	t.AppendHeader(header)
	for _, view := range views {
		row := table.Row{bookmarkMark(view), view.ID, view.Title, view.Category, view.Method}
		if showComment {
			row = append(row, view.Comment)
		}
		t.AppendRow(row)
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 40},
		{Number: 6, WidthMax: 40},
	})
	t.Render()
}

func renderDetail(view bookmark.View) {
	fmt.Printf("%s %s (#%s)\n", bookmarkMark(view), text.Bold.Sprint(view.Title), view.ID)
	if view.Comment != "" {
		fmt.Printf("  %s\n", view.Comment)
	}
	fmt.Printf("%s · %s\n", view.Category, view.Method)
	if view.ImageURL != "" {
		fmt.Println(view.ImageURL)
	}

	info := newTable()
	info.AppendHeader(table.Row{"Weight", "Energy", "Carbohydrate", "Protein", "Fat", "Sodium"})
	info.AppendRow(table.Row{view.Weight, view.Energy, view.Carbohydrate, view.Protein, view.Fat, view.Sodium})
	info.Render()

	ingredients := newTable()
	ingredients.AppendHeader(table.Row{"Ingredient", "Amount"})
	for _, item := range view.ParseIngredients() {
		ingredients.AppendRow(table.Row{item.Name, item.Amount})
	}
	ingredients.Render()

	for _, step := range view.Steps() {
		fmt.Printf("%2d. %s\n", step.Number, step.Text)
		if step.Image != "" {
			fmt.Printf("    %s\n", text.FgHiBlack.Sprint(step.Image))
		}
	}
	if view.Tip != "" {
		fmt.Printf("\ntip: %s\n", view.Tip)
	}
}

func confirm(ui *input.UI, question string) bool {
	answer, err := ui.Ask(question+" [y/N]", &input.Options{
		Default:     "n",
		HideDefault: true,
		Loop:        false,
	})
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

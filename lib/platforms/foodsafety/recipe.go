package foodsafety

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Field selects which recipe column a search term is matched against.
type Field int

const (
	FieldName Field = iota
	FieldIngredient
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldIngredient:
		return "ingredient"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// param is the COOKRCP01 column the field filters on.
func (f Field) param() string {
	if f == FieldIngredient {
		return "RCP_PARTS_DTLS"
	}
	return "RCP_NM"
}

// ParseField accepts "name" (or "recipe", the original client's spelling)
// and "ingredient". The empty string means name.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "name", "recipe":
		return FieldName, nil
	case "ingredient", "ingredients":
		return FieldIngredient, nil
	}
	return FieldName, fmt.Errorf("unknown search field %q, expected name or ingredient", s)
}

// Query is a search term plus the field it applies to. A blank term means
// the unfiltered catalog.
type Query struct {
	Term  string
	Field Field
}

func (q Query) Active() bool {
	return strings.TrimSpace(q.Term) != ""
}

const StepCount = 20

// Recipe is one catalog row. Every field except ID may be empty.
type Recipe struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Ingredients  string `json:"ingredients"`
	Category     string `json:"category"`
	Method       string `json:"method"`
	ImageURL     string `json:"image_url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`

	Weight       string `json:"weight,omitempty"`
	Energy       string `json:"energy,omitempty"`
	Carbohydrate string `json:"carbohydrate,omitempty"`
	Protein      string `json:"protein,omitempty"`
	Fat          string `json:"fat,omitempty"`
	Sodium       string `json:"sodium,omitempty"`
	HashTag      string `json:"hash_tag,omitempty"`
	Tip          string `json:"tip,omitempty"`

	// index i holds MANUAL(i+1) / MANUAL_IMG(i+1), unpopulated slots are empty
	StepText  [StepCount]string `json:"step_text"`
	StepImage [StepCount]string `json:"step_image"`
}

type Step struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
	Image  string `json:"image,omitempty"`
}

var stepPrefix = regexp.MustCompile(`^Step\d+\.\s*`)

// Steps returns the populated manual steps in order, renumbered from 1.
func (r Recipe) Steps() []Step {
	var steps []Step
	for i := 0; i < StepCount; i++ {
		text := strings.TrimSpace(r.StepText[i])
		if text == "" {
			continue
		}
		steps = append(steps, Step{
			Number: len(steps) + 1,
			Text:   strings.TrimSpace(stepPrefix.ReplaceAllString(text, "")),
			Image:  strings.TrimSpace(r.StepImage[i]),
		})
	}
	return steps
}

type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount,omitempty"`
}

// ParseIngredients splits the free-form ingredient text on commas. Items
// shaped like `name(amount g)` are split into name and amount.
func ParseIngredients(text string) []Ingredient {
	var out []Ingredient
	for _, item := range strings.Split(text, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed == "" {
			continue
		}
		parts := strings.Split(item, "(")
		if len(parts) == 2 && strings.Contains(parts[1], "g)") {
			out = append(out, Ingredient{
				Name:   strings.TrimSpace(parts[0]),
				Amount: "(" + strings.TrimSpace(parts[1]),
			})
			continue
		}
		out = append(out, Ingredient{Name: trimmed})
	}
	return out
}

func (r Recipe) ParseIngredients() []Ingredient {
	return ParseIngredients(r.Ingredients)
}

// wireRow is a row as COOKRCP01 sends it. Values are strings in practice,
// numbers are tolerated.
type wireRow map[string]json.RawMessage

func (w wireRow) text(key string) string {
	raw, ok := w[key]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

func (w wireRow) recipe() Recipe {
	r := Recipe{
		ID:           w.text("RCP_SEQ"),
		Title:        w.text("RCP_NM"),
		Ingredients:  w.text("RCP_PARTS_DTLS"),
		Category:     w.text("RCP_PAT2"),
		Method:       w.text("RCP_WAY2"),
		ImageURL:     w.text("ATT_FILE_NO_MAIN"),
		ThumbnailURL: w.text("ATT_FILE_NO_MK"),
		Weight:       w.text("INFO_WGT"),
		Energy:       w.text("INFO_ENG"),
		Carbohydrate: w.text("INFO_CAR"),
		Protein:      w.text("INFO_PRO"),
		Fat:          w.text("INFO_FAT"),
		Sodium:       w.text("INFO_NA"),
		HashTag:      w.text("HASH_TAG"),
		Tip:          w.text("RCP_NA_TIP"),
	}
	for i := 0; i < StepCount; i++ {
		r.StepText[i] = w.text(fmt.Sprintf("MANUAL%02d", i+1))
		r.StepImage[i] = w.text(fmt.Sprintf("MANUAL_IMG%02d", i+1))
	}
	return r
}

// WireRow renders r in the COOKRCP01 row format. Only fields that are set
// are included.
func WireRow(r Recipe) map[string]string {
	out := map[string]string{"RCP_SEQ": r.ID}
	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}
	set("RCP_NM", r.Title)
	set("RCP_PARTS_DTLS", r.Ingredients)
	set("RCP_PAT2", r.Category)
	set("RCP_WAY2", r.Method)
	set("ATT_FILE_NO_MAIN", r.ImageURL)
	set("ATT_FILE_NO_MK", r.ThumbnailURL)
	set("INFO_WGT", r.Weight)
	set("INFO_ENG", r.Energy)
	set("INFO_CAR", r.Carbohydrate)
	set("INFO_PRO", r.Protein)
	set("INFO_FAT", r.Fat)
	set("INFO_NA", r.Sodium)
	set("HASH_TAG", r.HashTag)
	set("RCP_NA_TIP", r.Tip)
	for i := 0; i < StepCount; i++ {
		set(fmt.Sprintf("MANUAL%02d", i+1), r.StepText[i])
		set(fmt.Sprintf("MANUAL_IMG%02d", i+1), r.StepImage[i])
	}
	return out
}

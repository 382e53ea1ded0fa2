package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

const (
	promptAddCustom = "+ Add a custom question"
	promptDone      = "Done"

	defaultCustomWeight = "0.1"
)

var errNothingSelected = errors.New("select at least one generated criterion")

// prompter is the terminal interaction pickCriteria needs.
type prompter interface {
	Choose(label string, items []string, cursor int) (int, error)
	Ask(label, def string, validate func(string) error) (string, error)
}

type promptUI struct{}

func (promptUI) Choose(label string, items []string, cursor int) (int, error) {
	sel := promptui.Select{
		Label:        label,
		Items:        items,
		Size:         len(items),
		CursorPos:    cursor,
		HideSelected: true,
	}
	i, _, err := sel.Run()
	return i, err
}

func (promptUI) Ask(label, def string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  def,
		Validate: validate,
	}
	return p.Run()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func nonEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be empty")
	}
	return nil
}

func weightValue(s string) error {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return errors.New("must be a number")
	}
	if w < 0 || w > 1 {
		return errors.New("must be between 0 and 1")
	}
	return nil
}

// pickCriteria toggles criteria until Done and collects custom questions.
// preselected starts the selection; empty starts with every criterion on.
func pickCriteria(p prompter, doc models.QuestionsDoc, preselected []string) (services.FinalizeInput, error) {
	on := make(map[string]bool, len(doc.Criteria))
	for _, c := range doc.Criteria {
		on[c.ID] = len(preselected) == 0
	}
	for _, id := range preselected {
		on[id] = true
	}

	var custom []models.CustomCriterion
	cursor := 0

	for {
		items := make([]string, 0, len(doc.Criteria)+2)
		for _, c := range doc.Criteria {
			items = append(items, fmt.Sprintf("%s %s: %s", checkbox(on[c.ID]), c.ID, c.Question))
		}
		for _, cc := range custom {
			items = append(items, fmt.Sprintf("[+] %s", cc.Question))
		}
		addIdx := len(items)
		items = append(items, promptAddCustom, promptDone)

		i, err := p.Choose("Toggle criteria, then choose Done", items, cursor)
		if err != nil {
			return services.FinalizeInput{}, err
		}
		cursor = i

		switch {
		case i < len(doc.Criteria):
			id := doc.Criteria[i].ID
			on[id] = !on[id]
		case i < addIdx:
			// custom entries are listed for reference only
		case i == addIdx:
			cc, err := askCustom(p)
			if err != nil {
				return services.FinalizeInput{}, err
			}
			custom = append(custom, cc)
		default:
			var selected []string
			for _, c := range doc.Criteria {
				if on[c.ID] {
					selected = append(selected, c.ID)
				}
			}
			if len(selected) == 0 {
				return services.FinalizeInput{}, errNothingSelected
			}
			return services.FinalizeInput{Selected: selected, Custom: custom}, nil
		}
	}
}

func askCustom(p prompter) (models.CustomCriterion, error) {
	question, err := p.Ask("Yes/No question", "", nonEmpty)
	if err != nil {
		return models.CustomCriterion{}, err
	}
	raw, err := p.Ask("Weight (0-1)", defaultCustomWeight, weightValue)
	if err != nil {
		return models.CustomCriterion{}, err
	}
	w, _ := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	return models.CustomCriterion{Question: strings.TrimSpace(question), Weight: w}, nil
}

package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/m-mizutani/whisker/pkg/model"
)

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("99")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().
			Width(13).
			Foreground(lipgloss.Color("245"))
	descriptionStyle = lipgloss.NewStyle().
				Width(64).
				Italic(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))
)

func renderCard(rec *model.DisplayRecord) string {
	rows := []string{
		titleStyle.Render(rec.Name),
		"",
		field("Origin", rec.Origin),
		field("Temperament", rec.Temperament),
		field("Weight", rec.Weight+" kg"),
		field("Life span", rec.LifeSpan+" years"),
		field("Discovered", rec.Date),
		field("Image", rec.ImageURL),
	}
	if desc := strings.TrimSpace(rec.Description); desc != "" {
		rows = append(rows, "", descriptionStyle.Render(desc))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

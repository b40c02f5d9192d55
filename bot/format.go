package bot

import (
	"fmt"
	"strings"

	"github.com/stooobe/go-league/models"
)

// escapeMarkdown escapes markdown characters in user-supplied text.
func escapeMarkdown(text string) string {
	r := strings.NewReplacer("*", "\\*", "_", "\\_", "~", "\\~", "`", "\\`")
	return r.Replace(text)
}

func ratingStr(rating *float64) string {
	if rating == nil {
		return "None"
	}
	return fmt.Sprintf("%.0f", *rating)
}

func mentionList(ids []int64) string {
	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = fmt.Sprintf("<@%d>", id)
	}
	return strings.Join(mentions, ", ")
}

// teamLine renders one lettered roster row, e.g.
// "A: **Alpha** (*1200*) -- <@1>, <@2>".
func teamLine(index int, team *models.Team) string {
	return fmt.Sprintf("%c: **%s** (*%s*) -- %s\n",
		rune('A'+index), escapeMarkdown(team.Name), ratingStr(team.Rating), mentionList(team.PlayerIDs))
}

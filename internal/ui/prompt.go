package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// RenderPrompt renders a two-segment Powerline-style prompt: user, then the
// current working directory. status is the exit code of the previous
// foreground command; a nonzero status tints the path segment red.
func RenderPrompt(user, path string, status int) string {
	userBg := currentTheme.Mauve
	userFg := currentTheme.Base
	pathBg := currentTheme.Surface
	pathFg := currentTheme.Text
	if status != 0 {
		pathBg = currentTheme.Red
	}

	userStyle := lipgloss.NewStyle().Background(userBg).Foreground(userFg).Padding(0, 1).Bold(true)
	pathStyle := lipgloss.NewStyle().Background(pathBg).Foreground(pathFg).Padding(0, 1)

	seg1 := userStyle.Render(user)
	sep1 := lipgloss.NewStyle().Foreground(userBg).Background(pathBg).Render("")
	seg2 := pathStyle.Render(path)
	sep2 := lipgloss.NewStyle().Foreground(pathBg).Render("")

	return fmt.Sprintf("%s%s%s%s ", seg1, sep1, seg2, sep2)
}

package serverwrap

import (
	"os"
	"strings"
	"text/template"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/serverwrap/pkg/ui"
)

// formatBold returns the string formatted as bold when stdout is a color terminal
func formatBold(s string) string {
	if !ui.DetectFormat(os.Stdout).Color() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatBoldUpper returns the string in uppercase and bold
func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"upper":     strings.ToUpper,
		"boldUpper": formatBoldUpper,
	})
}

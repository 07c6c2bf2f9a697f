package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clouide",
	Short: "☁️  Clouide - Multi-tenant browser IDE backend",
	Long: `# ☁️  Clouide

**A multi-tenant backend for a browser IDE.**

Every session gets its own workspace directory, its own git credentials and
its own interactive shells.

## ✨ Features

- 🖥️  **Interactive terminals** over WebSocket, confined to the workspace
- 📁 **File API** for listing, reading and editing workspace files
- 🌿 **Git integration** for init, clone and push
- 📦 **Workspace download** as a zip archive

## 🚀 Getting Started

Run **clouide serve** to start the server, then **clouide attach <session>**
to open a terminal from your shell.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		renderMarkdownHelp(cmd)
	})
}

// renderMarkdownHelp renders command help as markdown through glamour
func renderMarkdownHelp(cmd *cobra.Command) {
	fmt.Print(renderHelp(cmd))
}

func helpMarkdown(cmd *cobra.Command) string {
	var help strings.Builder

	if cmd.Long != "" {
		help.WriteString(cmd.Long)
		help.WriteString("\n\n")
	} else if cmd.Short != "" {
		help.WriteString("# " + cmd.Short)
		help.WriteString("\n\n")
	}

	help.WriteString("## 📖 Usage\n\n")
	help.WriteString("```bash\n")
	help.WriteString(cmd.UseLine())
	help.WriteString("\n```\n\n")

	if cmd.HasAvailableSubCommands() {
		help.WriteString("## 🔧 Available Commands\n\n")
		for _, sub := range cmd.Commands() {
			if sub.IsAvailableCommand() {
				help.WriteString(fmt.Sprintf("- **%s** - %s\n", sub.Name(), sub.Short))
			}
		}
		help.WriteString("\n")
	}

	if cmd.HasAvailableLocalFlags() {
		help.WriteString("## ⚙️  Flags\n\n```\n")
		help.WriteString(cmd.LocalFlags().FlagUsages())
		help.WriteString("```\n\n")
	}

	if cmd.HasAvailableInheritedFlags() {
		help.WriteString("## 🌐 Global Flags\n\n```\n")
		help.WriteString(cmd.InheritedFlags().FlagUsages())
		help.WriteString("```\n\n")
	}

	return help.String()
}

// renderHelp falls back to the plain markdown when glamour cannot render
func renderHelp(cmd *cobra.Command) string {
	markdown := helpMarkdown(cmd)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}

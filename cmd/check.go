package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/charmbracelet/lipgloss"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/style"
	"github.com/spf13/cobra"
)

// dependencies are the programs playback needs. mpv resolves YouTube links through yt-dlp.
var dependencies = []string{"mpv", "yt-dlp"}

func init() {
	rootCmd.AddCommand(checkCmd)
}

// checkCmd reports which playback dependencies are installed.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that mpv and yt-dlp are installed",
	Run: func(cmd *cobra.Command, args []string) {
		missing := 0
		for _, dep := range dependencies {
			path, err := exec.LookPath(dep)
			if err != nil {
				missing++
				fmt.Printf("%s %s %s\n", style.Fg(style.HiRed)(icon.Get(icon.Fail)), style.Bold(dep), style.Faint(installCommand(dep)))
				continue
			}
			fmt.Printf("%s %s %s\n", style.Fg(style.Green)(icon.Get(icon.Success)), style.Bold(dep), style.Faint(path))
		}

		if missing > 0 {
			os.Exit(1)
		}
	},
}

// CheckDependencies exits with an install hint when a required program is missing from PATH.
func CheckDependencies() {
	for _, dep := range dependencies {
		if _, err := exec.LookPath(dep); err != nil {
			printMissingDependencyError(dep)
			os.Exit(1)
		}
	}
}

func installCommand(dep string) string {
	switch runtime.GOOS {
	case "darwin":
		return "brew install " + dep
	case "linux":
		if dep == "yt-dlp" {
			return "pipx install yt-dlp"
		}
		return "sudo apt install " + dep
	case "windows":
		return "scoop install " + dep
	default:
		return ""
	}
}

func printMissingDependencyError(dep string) {
	installCmd := installCommand(dep)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.HiRed).
		Padding(1, 2).
		Margin(1, 0)

	title := style.New().Bold(true).Foreground(style.HiRed).Render(fmt.Sprintf("%s Error: Missing Dependency", icon.Get(icon.Fail)))
	body := style.New().Foreground(style.Text).Render(fmt.Sprintf("The required dependency '%s' was not found in your PATH.", dep))

	suggestion := ""
	if installCmd != "" {
		suggestion = fmt.Sprintf("\n\nTo install it, try running:\n  %s", style.New().Foreground(style.AccentColor).Bold(true).Render(installCmd))
	}

	fmt.Println(box.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			title,
			"\n",
			body,
			suggestion,
		),
	))
}

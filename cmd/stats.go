package cmd

import (
	"encoding/json"
	"math"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/practice"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// barScale is the number of minutes drawn as one block in the history chart.
const barScale = 5.0

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().IntP("days", "d", 7, "Number of days listed in the history")
	statsCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	statsCmd.SetOut(os.Stdout)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display practice time and streak",
	Run: func(cmd *cobra.Command, args []string) {
		days := lo.Clamp(lo.Must(cmd.Flags().GetInt("days")), 0, 30)

		var stats practice.Stats
		handleErr(withStore(func(kv store.KV) error {
			stats = practice.Summarize(practice.LoadLog(kv), time.Now(), days)
			return nil
		}))

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(stats))
			return
		}

		t, err := template.New("stats").Funcs(map[string]any{
			"faint":   style.Faint,
			"bold":    style.Bold,
			"magenta": style.Fg(color.Purple),
			"minutes": util.Minutes,
			"streak": func(n int) string {
				return util.Quantify(n, "day", "days")
			},
			"bar": func(minutes float64) string {
				blocks := int(math.Ceil(minutes / barScale))
				return style.Fg(color.Green)(strings.Repeat("▇", min(blocks, 24)))
			},
		}).Parse(constant.StatsTemplate)
		handleErr(err)
		handleErr(t.Execute(cmd.OutOrStdout(), stats))
	},
}

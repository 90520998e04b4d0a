package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/session"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/trainer"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(progressiveCmd)

	progressiveCmd.Flags().IntP("reps", "r", 0, fmt.Sprintf("Loop reps before each speed up, from %d to %d", trainer.MinRepsPerStep, trainer.MaxRepsPerStep))
	progressiveCmd.Flags().Float64P("step", "s", 0, fmt.Sprintf("Speed added per step, from %.2f to %.2f", trainer.MinSpeedStep, trainer.MaxSpeedStep))
	progressiveCmd.Flags().Float64P("target", "t", 0, fmt.Sprintf("Speed to stop at, from %.2f to %.2f", trainer.MinTargetSpeed, trainer.MaxTargetSpeed))
	progressiveCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	progressiveCmd.SetOut(os.Stdout)
}

var progressiveCmd = &cobra.Command{
	Use:   "progressive",
	Short: "Show or change the progressive training settings",
	Long: `Show or change the progressive training settings.

Values out of range are clamped. The next practice session starts from them.`,
	Example: "reprise progressive --reps 4 --step 0.05 --target 1",
	Run: func(cmd *cobra.Command, args []string) {
		configured := session.OptionsFromConfig().Trainer

		var settings trainer.Settings
		handleErr(withStore(func(kv store.KV) error {
			settings = session.LoadTrainerSettings(kv, configured)

			flags := cmd.Flags()
			if !flags.Changed("reps") && !flags.Changed("step") && !flags.Changed("target") {
				return nil
			}

			if flags.Changed("reps") {
				settings.RepsPerStep = trainer.ClampReps(lo.Must(flags.GetInt("reps")))
			}
			if flags.Changed("step") {
				settings.SpeedStep = trainer.ClampStep(lo.Must(flags.GetFloat64("step")))
			}
			if flags.Changed("target") {
				settings.TargetSpeed = trainer.ClampTarget(lo.Must(flags.GetFloat64("target")))
			}

			session.SaveTrainerSettings(kv, configured, settings)
			return nil
		}))

		if lo.Must(cmd.Flags().GetBool("json")) {
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			handleErr(encoder.Encode(settings))
			return
		}

		cmd.Printf("%s %s\n", icon.Get(icon.Speed), style.Bold("Progressive training"))
		cmd.Printf("%s %d\n", style.Faint("Reps per step"), settings.RepsPerStep)
		cmd.Printf("%s +%.2fx\n", style.Faint("Speed step   "), settings.SpeedStep)
		cmd.Printf("%s %.2fx\n", style.Faint("Target speed "), settings.TargetSpeed)
	},
}

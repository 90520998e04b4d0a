package cmd

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/session"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func init() {
	rootCmd.AddCommand(metronomeCmd)

	metronomeCmd.Flags().IntP("bpm", "b", 0, "Tempo, from 20 to 300")
	metronomeCmd.Flags().StringP("signature", "t", "", "Time signature, e.g. 3/4")
	metronomeCmd.Flags().Float64P("volume", "v", 0, "Click volume, from 0 to 1")
	lo.Must0(metronomeCmd.RegisterFlagCompletionFunc("signature", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return lo.Map(metronome.TimeSignatures, func(ts metronome.TimeSignature, _ int) string {
			return ts.String()
		}), cobra.ShellCompDirectiveNoFileComp
	}))
}

var metronomeCmd = &cobra.Command{
	Use:   "metronome",
	Short: "Run the metronome without a video",
	Long: `Run the metronome without a video.

Keys: space start/stop, + and - change the tempo, t taps the tempo,
s cycles the time signature, v and V lower and raise the volume, q quits.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := session.OptionsFromConfig()

		handleErr(withStore(func(kv store.KV) error {
			settings := session.LoadMetronomeSettings(kv, opts.Metronome)

			if cmd.Flags().Changed("bpm") {
				settings.BPM = lo.Must(cmd.Flags().GetInt("bpm"))
			}

			if cmd.Flags().Changed("signature") {
				ts, err := metronome.ParseTimeSignature(lo.Must(cmd.Flags().GetString("signature")))
				if err != nil {
					return err
				}
				settings.TimeSignature = ts.String()
			}

			if cmd.Flags().Changed("volume") {
				settings.Volume = metronome.ClampVolume(lo.Must(cmd.Flags().GetFloat64("volume")))
			}

			engine, output := openAudio()
			defer output.Close()

			m := metronome.New(engine, engine, clock.System{}, settings.Normalize(), metronome.Options{
				Lookahead:     opts.Lookahead,
				ScheduleAhead: opts.ScheduleAhead,
			})
			defer m.Stop()

			err := runMetronome(m)
			session.SaveMetronomeSettings(kv, opts.Metronome, m.Settings())
			return err
		}))
	},
}

const volumeStep = 0.1

// runMetronome reads single key presses from the terminal until q is pressed.
func runMetronome(m *metronome.Metronome) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("metronome needs an interactive terminal")
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return err
	}
	defer func() {
		_ = term.Restore(fd, state)
		fmt.Print("\r\n")
	}()

	var (
		mu    sync.Mutex
		flash metronome.Flash
	)

	draw := func() {
		mu.Lock()
		f := flash
		mu.Unlock()
		fmt.Print("\r\033[K" + metronomeStatus(m, f))
	}

	m.OnFlash(func(f metronome.Flash) {
		mu.Lock()
		flash = f
		mu.Unlock()
		draw()
	})

	m.Start()
	draw()

	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}

		switch buf[0] {
		case 'q', 3, 4:
			return nil
		case ' ':
			m.Toggle()
		case '+', '=':
			m.SetBPM(m.BPM() + 1)
		case '-':
			m.SetBPM(m.BPM() - 1)
		case 't':
			m.Tap()
		case 's':
			m.SetTimeSignature(metronome.NextTimeSignature(m.TimeSignature()))
		case 'v':
			m.SetVolume(util.Round(m.Volume()-volumeStep, 2))
		case 'V':
			m.SetVolume(util.Round(m.Volume()+volumeStep, 2))
		}

		draw()
	}
}

func metronomeStatus(m *metronome.Metronome, flash metronome.Flash) string {
	ts := m.TimeSignature()

	dots := make([]string, ts.Beats)
	for i := range dots {
		switch {
		case m.Running() && flash.On && i == flash.Beat && flash.Downbeat:
			dots[i] = style.Fg(style.Peach)(icon.Get(icon.Downbeat))
		case m.Running() && flash.On && i == flash.Beat:
			dots[i] = style.Fg(style.Blue)(icon.Get(icon.Beat))
		default:
			dots[i] = style.Faint("·")
		}
	}

	status := fmt.Sprintf("%s %s %s  %s  %s", icon.Get(icon.Metronome), style.Bold(fmt.Sprintf("%d BPM", m.BPM())), ts, strings.Join(dots, " "), style.Faint(fmt.Sprintf("vol %.0f%%", m.Volume()*100)))
	if !m.Running() {
		status += "  " + style.Faint("stopped")
	}
	return status
}

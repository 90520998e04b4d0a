package cmd

import (
	"fmt"
	"os"

	"github.com/atotto/clipboard"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/open"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/share"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/style"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(shareCmd)

	shareCmd.Flags().Float64("start", -1, "Loop start in seconds")
	shareCmd.Flags().Float64("end", -1, "Loop end in seconds")
	shareCmd.Flags().Float64P("speed", "s", 1, "Playback speed, from 0.25 to 2")
	shareCmd.Flags().StringP("loop", "l", "", "Use the region of a saved loop, by name or id")
	shareCmd.Flags().BoolP("copy", "c", false, "Copy the link to the clipboard")
	shareCmd.Flags().BoolP("open", "o", false, "Open the link in the browser")
	shareCmd.MarkFlagsMutuallyExclusive("loop", "start")
	shareCmd.MarkFlagsMutuallyExclusive("loop", "end")
	shareCmd.SetOut(os.Stdout)
}

var shareCmd = &cobra.Command{
	Use:     "share <video>",
	Short:   "Build a link that reopens a video with a loop and speed",
	Example: "  reprise share dQw4w9WgXcQ --start 42 --end 51.5 --speed 0.75 --copy",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		link, err := share.Parse(args[0])
		handleErr(err)

		link = applyLinkFlags(cmd, link)

		if name := lo.Must(cmd.Flags().GetString("loop")); name != "" {
			handleErr(withStore(func(kv store.KV) error {
				p, err := findPreset(preset.New(kv), link.VideoID, name)
				if err != nil {
					return err
				}
				link.Start, link.End = mo.Some(p.Start), mo.Some(p.End)
				return nil
			}))
		}

		raw, err := share.Build(viper.GetString(key.ShareBaseURL), link)
		handleErr(err)

		cmd.Println(raw)

		if lo.Must(cmd.Flags().GetBool("copy")) {
			if err := clipboard.WriteAll(raw); err != nil {
				log.Warnf("clipboard: %s", err)
			} else {
				fmt.Fprintf(os.Stderr, "%s Copied to clipboard\n", style.Fg(color.Green)(icon.Get(icon.Link)))
			}
		}

		if lo.Must(cmd.Flags().GetBool("open")) {
			handleErr(open.Start(raw))
		}
	},
}

// findPreset resolves a saved loop by id, then by the best fuzzy name match.
func findPreset(book *preset.Book, videoID, query string) (preset.Preset, error) {
	if p, err := book.Get(videoID, query); err == nil {
		return p, nil
	}

	matches := book.Find(videoID, query)
	if len(matches) == 0 {
		return preset.Preset{}, fmt.Errorf("%w: %s", preset.ErrNotFound, query)
	}

	return matches[0], nil
}

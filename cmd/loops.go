package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dustin/go-humanize"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loopsCmd)
}

// loopsCmd groups the saved loop commands.
var loopsCmd = &cobra.Command{
	Use:     "loops",
	Aliases: []string{"presets"},
	Short:   "Manage saved loops of a video",
}

// parseTime reads seconds given as "95.5", "1:35.5" or "1:01:35".
func parseTime(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	var seconds float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil || v < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		seconds = seconds*60 + v
	}

	return seconds, nil
}

func init() {
	loopsCmd.AddCommand(loopsListCmd)

	loopsListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	loopsListCmd.Flags().StringP("filter", "f", "", "Fuzzy filter by loop name")
	loopsListCmd.SetOut(os.Stdout)
}

var loopsListCmd = &cobra.Command{
	Use:   "list <video>",
	Short: "List the saved loops of a video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := library.ExtractID(args[0])
		handleErr(err)

		handleErr(withStore(func(kv store.KV) error {
			book := preset.New(kv)

			presets := book.List(id)
			if filter := lo.Must(cmd.Flags().GetString("filter")); filter != "" {
				presets = book.Find(id, filter)
			}

			if lo.Must(cmd.Flags().GetBool("json")) {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(presets)
			}

			if len(presets) == 0 {
				cmd.Println(style.Faint("No saved loops"))
				return nil
			}

			for _, p := range presets {
				cmd.Printf(
					"%s %s %s\n  %s\n",
					style.Fg(color.Orange)(icon.Get(icon.Loop)),
					style.Bold(p.Name),
					p.Region(),
					style.Faint(fmt.Sprintf("%s • %s • saved %s", p.ID, util.Timestamp(p.Length()), humanize.Time(p.SavedAt))),
				)
			}
			return nil
		}))
	},
}

func init() {
	loopsCmd.AddCommand(loopsSaveCmd)

	loopsSaveCmd.Flags().StringP("name", "n", "", "Loop name, numbered automatically when empty")
}

var loopsSaveCmd = &cobra.Command{
	Use:     "save <video> <start> <end>",
	Short:   "Save a loop region, times in seconds or m:ss",
	Example: "  reprise loops save dQw4w9WgXcQ 0:42 0:51.5 --name Chorus",
	Args:    cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := library.ExtractID(args[0])
		handleErr(err)

		start, err := parseTime(args[1])
		handleErr(err)

		end, err := parseTime(args[2])
		handleErr(err)

		handleErr(withStore(func(kv store.KV) error {
			p, err := preset.New(kv).Save(id, lo.Must(cmd.Flags().GetString("name")), start, end)
			if err != nil {
				return err
			}

			fmt.Printf("%s Saved %s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Bold(p.Name), p.Region())
			return nil
		}))
	},
}

func init() {
	loopsCmd.AddCommand(loopsDeleteCmd)

	loopsDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var loopsDeleteCmd = &cobra.Command{
	Use:     "delete <video> [name or id]",
	Aliases: []string{"rm"},
	Short:   "Delete a saved loop, picking it interactively when not named",
	Args:    cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := library.ExtractID(args[0])
		handleErr(err)

		handleErr(withStore(func(kv store.KV) error {
			book := preset.New(kv)

			var target preset.Preset
			if len(args) == 2 {
				found, err := findPreset(book, id, args[1])
				if err != nil {
					return err
				}
				target = found
			} else {
				presets := book.List(id)
				if len(presets) == 0 {
					return preset.ErrNotFound
				}

				labels := lo.Map(presets, func(p preset.Preset, _ int) string {
					return fmt.Sprintf("%s (%s)", p.Name, p.Region())
				})

				var index int
				if err := survey.AskOne(&survey.Select{Message: "Loop to delete", Options: labels}, &index); err != nil {
					return err
				}
				target = presets[index]
			}

			if !lo.Must(cmd.Flags().GetBool("yes")) {
				var response bool
				confirm := survey.Confirm{Message: fmt.Sprintf("Delete %s?", target.Name)}
				if err := survey.AskOne(&confirm, &response); err != nil {
					return err
				}
				if !response {
					return nil
				}
			}

			if err := book.Delete(id, target.ID); err != nil {
				return err
			}

			fmt.Printf("%s Deleted %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Bold(target.Name))
			return nil
		}))
	},
}

func init() {
	loopsCmd.AddCommand(loopsExportCmd)

	loopsExportCmd.Flags().StringP("output", "o", "", "Write to a file instead of stdout")
	loopsExportCmd.Flags().BoolP("save", "S", false, "Write to a file named after the video")
	loopsExportCmd.MarkFlagsMutuallyExclusive("output", "save")
}

var loopsExportCmd = &cobra.Command{
	Use:   "export <video>",
	Short: "Export the saved loops of a video as TOML",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := library.ExtractID(args[0])
		handleErr(err)

		handleErr(withStore(func(kv store.KV) error {
			path := lo.Must(cmd.Flags().GetString("output"))
			if lo.Must(cmd.Flags().GetBool("save")) {
				name := id
				if video, err := library.New(kv).Get(id); err == nil {
					name = video.Name()
				}
				path = util.SanitizeFilename(name) + ".loops.toml"
			}

			if path == "" {
				return preset.New(kv).Export(os.Stdout, id)
			}

			file, err := filesystem.API().Create(path)
			if err != nil {
				return err
			}
			defer util.Ignore(file.Close)

			if err := preset.New(kv).Export(file, id); err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%s Wrote %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), path)
			return nil
		}))
	},
}

func init() {
	loopsCmd.AddCommand(loopsImportCmd)
}

var loopsImportCmd = &cobra.Command{
	Use:   "import <video> <file>",
	Short: "Import loops from a TOML export, use - to read stdin",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := library.ExtractID(args[0])
		handleErr(err)

		var r io.Reader = os.Stdin
		if args[1] != "-" {
			file, err := filesystem.API().Open(args[1])
			handleErr(err)
			defer util.Ignore(file.Close)
			r = file
		}

		handleErr(withStore(func(kv store.KV) error {
			n, err := preset.New(kv).Import(r, id)
			if err != nil {
				return err
			}

			fmt.Printf("%s Imported %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), util.Quantify(n, "loop", "loops"))
			return nil
		}))
	},
}

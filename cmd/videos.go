package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/dustin/go-humanize"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/oembed"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(videosCmd)
}

// videosCmd groups the video library commands.
var videosCmd = &cobra.Command{
	Use:     "videos",
	Aliases: []string{"library"},
	Short:   "Manage the library of practice videos",
}

func init() {
	videosCmd.AddCommand(videosListCmd)

	videosListCmd.Flags().BoolP("raw", "r", false, "Print only video IDs")
	videosListCmd.Flags().BoolP("json", "j", false, "Format the output as JSON")
	videosListCmd.MarkFlagsMutuallyExclusive("raw", "json")
	videosListCmd.SetOut(os.Stdout)
}

var videosListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List saved videos, optionally filtered by a fuzzy query",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		handleErr(withStore(func(kv store.KV) error {
			lib := library.New(kv)
			videos := lib.List()
			if len(args) == 1 {
				videos = lib.Search(args[0])
			}

			switch {
			case lo.Must(cmd.Flags().GetBool("json")):
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(videos)
			case lo.Must(cmd.Flags().GetBool("raw")):
				for _, v := range videos {
					cmd.Println(v.ID)
				}
				return nil
			}

			if len(videos) == 0 {
				cmd.Println(style.Faint("No videos yet. Add one with " + style.Bold("reprise videos add <url>")))
				return nil
			}

			book := preset.New(kv)
			for _, v := range videos {
				cmd.Printf(
					"%s %s\n  %s\n",
					style.Fg(color.Purple)(icon.Get(icon.Video)),
					style.Bold(v.Name()),
					style.Faint(fmt.Sprintf(
						"%s • added %s • %s",
						v.ID,
						humanize.Time(v.AddedAt),
						util.Quantify(book.Count(v.ID), "saved loop", "saved loops"),
					)),
				)
			}
			return nil
		}))
	},
}

func init() {
	videosCmd.AddCommand(videosAddCmd)

	videosAddCmd.Flags().StringP("title", "t", "", "Title to store instead of fetching it")
}

var videosAddCmd = &cobra.Command{
	Use:   "add <url or id>",
	Short: "Add a YouTube video to the library",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title := lo.Must(cmd.Flags().GetString("title"))

		handleErr(withStore(func(kv store.KV) error {
			lib := library.New(kv)

			video, err := lib.Add(args[0], title)
			if errors.Is(err, library.ErrExists) {
				fmt.Printf("%s %s is already in the library\n", icon.Get(icon.Mark), style.Bold(video.Name()))
				return nil
			}
			if err != nil {
				return err
			}

			if video.Title == "" && viper.GetBool(key.MetadataFetchTitles) {
				erase := util.PrintErasable(fmt.Sprintf("%s Fetching title...", icon.Get(icon.Progress)))
				video = fetchTitle(lib, video)
				erase()
			}

			fmt.Printf("%s Added %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Bold(video.Name()))
			return nil
		}))
	},
}

// fetchTitle looks up and stores the title of video, keeping the video unchanged on failure.
func fetchTitle(lib *library.Library, video library.Video) library.Video {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	title, err := oembed.New().Title(ctx, video.ID)
	if err != nil {
		log.Warnf("no title for %s: %s", video.ID, err)
		return video
	}

	if err := lib.SetTitle(video.ID, title); err != nil {
		log.Warnf("storing title for %s: %s", video.ID, err)
		return video
	}

	video.Title = title
	return video
}

func init() {
	videosCmd.AddCommand(videosRemoveCmd)

	videosRemoveCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	videosRemoveCmd.Flags().Bool("keep-loops", false, "Keep the saved loops of the video")
}

var videosRemoveCmd = &cobra.Command{
	Use:     "remove <url or id>",
	Aliases: []string{"rm"},
	Short:   "Remove a video and its saved loops from the library",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := library.ExtractID(args[0])
		handleErr(err)

		handleErr(withStore(func(kv store.KV) error {
			lib := library.New(kv)

			video, err := lib.Get(id)
			if err != nil {
				return err
			}

			if !lo.Must(cmd.Flags().GetBool("yes")) {
				confirm := survey.Confirm{
					Message: fmt.Sprintf("Remove %s?", video.Name()),
					Default: false,
				}
				var response bool
				if err := survey.AskOne(&confirm, &response); err != nil {
					return err
				}
				if !response {
					return nil
				}
			}

			if err := lib.Remove(id); err != nil {
				return err
			}

			if !lo.Must(cmd.Flags().GetBool("keep-loops")) {
				if err := kv.Remove(preset.StoreKey(id)); err != nil {
					return err
				}
			}

			fmt.Printf("%s Removed %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), style.Bold(video.Name()))
			return nil
		}))
	},
}

// Package cmd implements the command-line interface for reprise.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/reprise-cli/reprise/color"
	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/icon"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/share"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/tui"
	"github.com/reprise-cli/reprise/util"
	"github.com/reprise-cli/reprise/version"
	"github.com/reprise-cli/reprise/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, square)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("store", "", "Storage backend (gache, sqlite, memory)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("store", completeBackends))
	lo.Must0(viper.BindPFlag(key.StoreBackend, rootCmd.PersistentFlags().Lookup("store")))

	rootCmd.Flags().Float64P("speed", "s", 0, "Playback speed, from 0.25 to 2")
	rootCmd.Flags().Float64("start", -1, "Loop start in seconds")
	rootCmd.Flags().Float64("end", -1, "Loop end in seconds")
	rootCmd.Flags().IntP("bpm", "b", 0, "Metronome tempo for this session")

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})

	go func() {
		_ = util.Delete(where.Temp())
	}()
}

var rootCmd = &cobra.Command{
	Use:   constant.Reprise + " [video]",
	Short: "Loop, slow down and practice along with YouTube videos",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Loop, slow down and practice along with YouTube videos"),
	Example: `  reprise
  reprise https://youtu.be/dQw4w9WgXcQ --speed 0.75
  reprise "https://www.youtube.com/watch?v=dQw4w9WgXcQ&start=42&end=51.5"`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		CheckDependencies()

		options := tui.Options{}

		if len(args) == 1 {
			link, err := share.Parse(args[0])
			handleErr(err)

			link = applyLinkFlags(cmd, link)
			options.Link = mo.Some(link)
		}

		if cmd.Flags().Changed("bpm") {
			options.BPM = mo.Some(lo.Must(cmd.Flags().GetInt("bpm")))
		}

		sess, closeSession := openSession()

		if link, ok := options.Link.Get(); ok {
			video, err := sess.Library.Add(link.VideoID, "")
			if err != nil && !errors.Is(err, library.ErrExists) {
				closeSession()
				handleErr(err)
			}
			options.Video = mo.Some(video)
		}

		err := tui.Run(sess, &options)
		closeSession()
		handleErr(err)
	},
}

// applyLinkFlags lets --speed, --start and --end override the values carried by a link.
func applyLinkFlags(cmd *cobra.Command, link share.Link) share.Link {
	if cmd.Flags().Changed("speed") {
		link.Speed = mo.Some(lo.Clamp(lo.Must(cmd.Flags().GetFloat64("speed")), share.MinSpeed, share.MaxSpeed))
	}

	if cmd.Flags().Changed("start") {
		link.Start = mo.Some(lo.Must(cmd.Flags().GetFloat64("start")))
	}

	if cmd.Flags().Changed("end") {
		link.End = mo.Some(lo.Must(cmd.Flags().GetFloat64("end")))
	}

	return link
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"

	"github.com/gopxl/beep/v2"
	"github.com/reprise-cli/reprise/audio"
	"github.com/reprise-cli/reprise/clock"
	"github.com/reprise-cli/reprise/config"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/oembed"
	"github.com/reprise-cli/reprise/playback"
	"github.com/reprise-cli/reprise/session"
	"github.com/reprise-cli/reprise/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// openSession builds a practice session on mpv, the configured store and the sound card.
// The returned function tears everything down and is safe to call more than once.
func openSession() (*session.Session, func()) {
	if name := viper.GetString(key.Player); name != "mpv" {
		handleErr(fmt.Errorf("unsupported player %q, only mpv is available", name))
	}

	kv := store.Open()
	engine, output := openAudio()

	sess := session.New(session.Deps{
		Player: playback.NewMPV(),
		Store:  kv,
		Wall:   clock.System{},
		Audio:  engine,
		Clicks: engine,
		Titles: oembed.New(),
	}, session.OptionsFromConfig())

	closed := false
	return sess, func() {
		if closed {
			return
		}
		closed = true

		if err := sess.Close(); err != nil {
			log.Warnf("closing player: %s", err)
		}
		output.Close()
		_ = store.Close(kv)
	}
}

func openAudio() (*audio.Engine, *audio.Output) {
	engine := audio.NewEngine(beep.SampleRate(viper.GetInt(key.MetronomeSampleRate)))
	return engine, audio.Open(engine, config.Millis(key.MetronomeAudioBufferMs))
}

// withStore runs fn against the configured store and closes it afterwards.
func withStore(fn func(kv store.KV) error) error {
	kv := store.Open()
	defer func() { _ = store.Close(kv) }()
	return fn(kv)
}

func completeBackends(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return store.Backends, cobra.ShellCompDirectiveNoFileComp
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/reprise-cli/reprise/library"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/practice"
	"github.com/reprise-cli/reprise/preset"
	"github.com/reprise-cli/reprise/trainer"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// schemaTargets maps a stored record to a value of its type.
var schemaTargets = map[string]any{
	"videos":      []library.Video{},
	"loops":       []preset.Preset{},
	"log":         practice.Log{},
	"stats":       &practice.Stats{},
	"progressive": &trainer.Settings{},
	"metronome":   &metronome.Settings{},
}

func init() {
	rootCmd.AddCommand(schemaCmd)

	schemaCmd.Flags().StringP("type", "t", "loops", "Record to describe: "+strings.Join(schemaNames(), ", "))
	lo.Must0(schemaCmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return schemaNames(), cobra.ShellCompDirectiveNoFileComp
	}))
}

func schemaNames() []string {
	names := lo.Keys(schemaTargets)
	sort.Strings(names)
	return names
}

// schemaCmd prints JSON schemas of the records kept in the store and printed with --json.
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Generate JSON schemas for stored records and JSON output",
	Run: func(cmd *cobra.Command, args []string) {
		name := lo.Must(cmd.Flags().GetString("type"))
		target, ok := schemaTargets[name]
		if !ok {
			handleErr(fmt.Errorf("unknown type %s, available: %s", name, strings.Join(schemaNames(), ", ")))
		}

		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			return t.Name()
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(reflector.Reflect(target)))
	},
}

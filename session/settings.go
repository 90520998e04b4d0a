package session

import (
	"github.com/reprise-cli/reprise/log"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/store"
	"github.com/reprise-cli/reprise/trainer"
)

// configSuffix marks the copy of the configured values a stored setting was saved under.
const configSuffix = "Config"

type rebaser[T any] interface {
	Rebase(previous, configured T) T
}

// restore returns the stored settings under name, with every field whose configured
// value changed since they were saved replaced by the new configured value.
func restore[T rebaser[T]](kv store.KV, name string, configured T) T {
	current := configured
	if !store.LoadJSON(kv, name, &current) {
		return configured
	}

	previous := configured
	store.LoadJSON(kv, name+configSuffix, &previous)
	return current.Rebase(previous, configured)
}

func persist(kv store.KV, name string, configured, current any) {
	if err := store.SaveJSON(kv, name, current); err != nil {
		log.Warnf("saving %s: %s", name, err)
		return
	}

	if err := store.SaveJSON(kv, name+configSuffix, configured); err != nil {
		log.Warnf("saving %s: %s", name+configSuffix, err)
	}
}

// LoadTrainerSettings returns the progressive settings for a new session.
func LoadTrainerSettings(kv store.KV, configured trainer.Settings) trainer.Settings {
	return restore(kv, trainer.StoreKey, configured.Normalize()).Normalize()
}

// SaveTrainerSettings stores current along with the configured values in effect.
func SaveTrainerSettings(kv store.KV, configured, current trainer.Settings) {
	persist(kv, trainer.StoreKey, configured.Normalize(), current.Normalize())
}

// LoadMetronomeSettings returns the metronome settings for a new session.
func LoadMetronomeSettings(kv store.KV, configured metronome.Settings) metronome.Settings {
	return restore(kv, metronome.StoreKey, configured.Normalize()).Normalize()
}

// SaveMetronomeSettings stores current along with the configured values in effect.
func SaveMetronomeSettings(kv store.KV, configured, current metronome.Settings) {
	persist(kv, metronome.StoreKey, configured.Normalize(), current.Normalize())
}

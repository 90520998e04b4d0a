package preset

import (
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// document is the TOML layout of an export.
type document struct {
	Video string   `toml:"video"`
	Loops []Preset `toml:"loop"`
}

// Export writes the presets of a video as TOML.
func (b *Book) Export(w io.Writer, videoID string) error {
	doc := document{Video: videoID, Loops: b.List(videoID)}
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("export loops: %w", err)
	}

	return nil
}

// Import reads a TOML export and appends its loops to videoID.
// Invalid regions are skipped; loops whose ID is already present are replaced.
// It returns the number of loops imported.
func (b *Book) Import(r io.Reader, videoID string) (int, error) {
	var doc document
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("import loops: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	presets := b.load(videoID)
	imported := 0

	for _, p := range doc.Loops {
		if !(p.Start < p.End) || p.Start < 0 {
			continue
		}

		if _, err := uuid.Parse(p.ID); err != nil {
			p.ID = uuid.NewString()
		}

		if p.SavedAt.IsZero() {
			p.SavedAt = b.now()
		}

		if p.Name == "" {
			p.Name = fmt.Sprintf("Loop %d", len(presets)+1)
		}

		if _, i, ok := lo.FindIndexOf(presets, func(existing Preset) bool { return existing.ID == p.ID }); ok {
			presets[i] = p
		} else {
			presets = append(presets, p)
		}

		imported++
	}

	if imported == 0 {
		return 0, nil
	}

	return imported, b.save(videoID, presets)
}

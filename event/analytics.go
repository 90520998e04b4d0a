package event

import (
	"github.com/reprise-cli/reprise/log"
)

// Analytics writes every event to the structured log.
func Analytics(e Event) {
	fields := make(map[string]any, len(e.Data)+1)
	for k, v := range e.Data {
		fields[k] = v
	}
	fields["event"] = string(e.Kind)
	log.Fields(fields).Info("practice event")
}

// Package constant defines immutable application-level identifiers and configuration defaults.
package constant

// StatsTemplate is the text/template rendered by "reprise stats".
const StatsTemplate = `{{ magenta "▇▇▇" }} {{ magenta "Practice" }}

  {{ faint "Streak" }}          {{ bold (streak .Streak) }}
  {{ faint "Today" }}           {{ bold (minutes .Today) }}
  {{ faint "Last 7 days" }}     {{ bold (minutes .Week) }}
  {{ faint "Last 30 days" }}    {{ bold (minutes .Month) }}
  {{ faint "Best day" }}        {{ if .BestDay }}{{ bold .BestDay }} {{ faint (minutes .BestMinutes) }}{{ else }}{{ faint "none yet" }}{{ end }}
{{ if .Days }}
{{ range .Days }}  {{ faint .Day }}  {{ bar .Minutes }} {{ minutes .Minutes }}
{{ end }}{{ end }}`

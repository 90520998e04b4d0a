package icon

// Icon identifies a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Video
	Loop
	Rep
	Speed
	Metronome
	Beat
	Downbeat
	Streak
	Timer
	Mark
	Link
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		squares: "🟩",
	},
	Fail: {
		emoji:   "💀",
		nerd:    "",
		plain:   "✗",
		squares: "🟥",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "~",
		squares: "🟨",
	},
	Video: {
		emoji:   "📺",
		nerd:    "",
		plain:   "▶",
		squares: "🟦",
	},
	Loop: {
		emoji:   "🔁",
		nerd:    "",
		plain:   "↻",
		squares: "🟪",
	},
	Rep: {
		emoji:   "✅",
		nerd:    "",
		plain:   "#",
		squares: "🟩",
	},
	Speed: {
		emoji:   "🚀",
		nerd:    "",
		plain:   "»",
		squares: "🟧",
	},
	Metronome: {
		emoji:   "🥁",
		nerd:    "",
		plain:   "♩",
		squares: "🟫",
	},
	Beat: {
		emoji:   "🔵",
		nerd:    "",
		plain:   "●",
		squares: "🟦",
	},
	Downbeat: {
		emoji:   "🔴",
		nerd:    "",
		plain:   "◉",
		squares: "🟥",
	},
	Streak: {
		emoji:   "🔥",
		nerd:    "",
		plain:   "*",
		squares: "🟧",
	},
	Timer: {
		emoji:   "⏱️",
		nerd:    "",
		plain:   "◷",
		squares: "⬜",
	},
	Mark: {
		emoji:   "📌",
		nerd:    "",
		plain:   "+",
		squares: "🟨",
	},
	Link: {
		emoji:   "🔗",
		nerd:    "",
		plain:   "&",
		squares: "🟪",
	},
}

package tui

type state int

const (
	loadingState state = iota
	errorState
	libraryState
	inputState
	practiceState
	presetsState
)

// inputPurpose tells what the text input is collecting.
type inputPurpose int

const (
	addVideoInput inputPurpose = iota
	presetNameInput
	progressiveInput
)

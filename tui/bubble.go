package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/event"
	"github.com/reprise-cli/reprise/internal/ui"
	"github.com/reprise-cli/reprise/key"
	"github.com/reprise-cli/reprise/metronome"
	"github.com/reprise-cli/reprise/session"
	"github.com/reprise-cli/reprise/style"
	"github.com/reprise-cli/reprise/util"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// flashState holds the last metronome flash. It is written from timer goroutines.
type flashState struct {
	mu    sync.Mutex
	flash metronome.Flash
}

func (f *flashState) set(flash metronome.Flash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flash = flash
}

func (f *flashState) get() metronome.Flash {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flash
}

// statefulBubble is the whole application model.
type statefulBubble struct {
	state         state
	statesHistory util.Stack[state]
	loading       bool

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	inputC    textinput.Model
	libraryC  list.Model
	presetsC  list.Model
	positionC progress.Model
	trainerC  progress.Model
	helpC     help.Model

	session     *session.Session
	events      chan event.Event
	unsubscribe func()
	flash       *flashState
	watched     <-chan struct{}

	inputPurpose   inputPurpose
	progressStatus string
	lastError      error

	width, height int
	notifier      *ui.Model

	options *Options
}

// raiseError dispatches a terminal error and transitions the application to the failure view.
func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.newState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

// newState moves to s and remembers where it came from, except for transient states.
func (b *statefulBubble) newState(s state) {
	if b.state == s {
		return
	}

	if !lo.Contains([]state{loadingState, inputState, errorState}, b.state) {
		b.statesHistory.Push(b.state)
	}

	b.setState(s)
}

func (b *statefulBubble) previousState() {
	if b.statesHistory.Len() > 0 {
		b.setState(b.statesHistory.Pop())
	}
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.libraryC.SetSize(listWidth, listHeight)
	b.libraryC.Help.Width = listWidth

	b.presetsC.SetSize(listWidth, listHeight)
	b.presetsC.Help.Width = listWidth

	b.width = width - x
	b.height = height - y

	b.positionC.Width = b.width
	b.trainerC.Width = util.Min(b.width, 30)
	b.inputC.Width = b.width
	b.helpC.Width = b.width
	b.notifier.Width = b.width / 2
}

func (b *statefulBubble) startLoading(status string) {
	b.loading = true
	b.progressStatus = status
}

func (b *statefulBubble) stopLoading() {
	b.loading = false
	b.progressStatus = ""
}

// detach stops forwarding session events to the bubble.
func (b *statefulBubble) detach() {
	if b.unsubscribe != nil {
		b.unsubscribe()
	}
}

type listOptions struct {
	title      string
	titleColor lipgloss.Color
}

func (b *statefulBubble) makeList(options listOptions) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(viper.GetInt(key.TUIItemSpacing))
	delegate.Styles.SelectedTitle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(style.AccentColor).
		Foreground(style.AccentColor).
		Padding(0, 0, 0, 1)
	delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

	listC := list.New(nil, delegate, 0, 0)
	listC.KeyMap = b.keymap.forList()
	listC.AdditionalShortHelpKeys = b.keymap.ShortHelp
	listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
		return b.keymap.FullHelp()[0]
	}
	listC.Title = options.title
	listC.Styles.Title = lipgloss.NewStyle().Foreground(style.Base).Background(options.titleColor).Padding(0, 1)
	listC.Styles.NoItems = paddingStyle
	listC.StatusMessageLifetime = 3 * time.Second
	listC.SetShowPagination(false)
	listC.SetShowStatusBar(false)

	return listC
}

func newBubble(sess *session.Session, options *Options) *statefulBubble {
	bubble := &statefulBubble{
		statesHistory: util.Stack[state]{},
		keymap:        newStatefulKeymap(),
		session:       sess,
		events:        make(chan event.Event, 64),
		flash:         &flashState{},
		notifier:      &ui.Model{},
		options:       options,
	}

	bubble.unsubscribe = sess.Bus.Subscribe(func(e event.Event) {
		select {
		case bubble.events <- e:
		default:
		}
	})
	sess.Metronome.OnFlash(bubble.flash.set)

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(style.AccentColor)

	bubble.inputC = textinput.New()
	bubble.inputC.CharLimit = 200

	bubble.positionC = progress.New(progress.WithGradient(string(style.Mauve), string(style.Blue)), progress.WithoutPercentage())
	bubble.trainerC = progress.New(progress.WithSolidFill(string(style.Green)), progress.WithoutPercentage())

	bubble.libraryC = bubble.makeList(listOptions{
		title:      fmt.Sprintf("Videos (v%s)", constant.Version),
		titleColor: style.AccentColor,
	})
	bubble.libraryC.SetStatusBarItemName("video", "videos")

	bubble.presetsC = bubble.makeList(listOptions{
		title:      "Saved Loops",
		titleColor: style.Peach,
	})
	bubble.presetsC.SetStatusBarItemName("loop", "loops")

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return bubble
}

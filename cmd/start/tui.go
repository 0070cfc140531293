package start

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/reeldeal/reeldeal/pkg/artifacts"
	"github.com/reeldeal/reeldeal/pkg/engine"
	"github.com/reeldeal/reeldeal/pkg/tmdb"
)

const (
	maxMatches = 8
	topK       = 5
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170"))
	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("246"))
	matchSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170"))
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type model struct {
	snap    *engine.Snapshot
	posters *tmdb.Client
	dataDir string
	watcher *fsnotify.Watcher // nil when the data dir cannot be watched

	searchInput textinput.Model
	results     viewport.Model
	matches     []string
	cursor      int
	status      string
	ready       bool
}

// recsMsg carries a finished recommendation lookup, posters included.
type recsMsg struct {
	title string
	body  string
}

// watchMsg signals that an artifact file changed on disk.
type watchMsg struct{}

// reloadMsg carries a freshly loaded snapshot, or nil when reloading failed
// and the current snapshot should stay in place.
type reloadMsg struct {
	snap *engine.Snapshot
}

func initialModel(snap *engine.Snapshot, posters *tmdb.Client, dataDir string, watcher *fsnotify.Watcher) model {
	searchInput := textinput.New()
	searchInput.Prompt = "> "
	searchInput.Placeholder = "Type a movie title"
	searchInput.Focus()

	m := model{
		snap:        snap,
		posters:     posters,
		dataDir:     dataDir,
		watcher:     watcher,
		searchInput: searchInput,
		status:      fmt.Sprintf("%d movies loaded", snap.Len()),
	}
	m.matches = m.filterTitles("")
	return m
}

func (m model) Init() tea.Cmd {
	if m.watcher == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, waitForChange(m.watcher))
}

// waitForChange blocks until one of the artifact files is written in the
// watched data dir.
func waitForChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return nil
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				name := filepath.Base(ev.Name)
				for _, artifact := range artifacts.Files() {
					if name == artifact {
						return watchMsg{}
					}
				}
			case _, ok := <-w.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func reloadSnapshot(dir string) tea.Cmd {
	return func() tea.Msg {
		snap, err := artifacts.Load(dir)
		if err != nil {
			return reloadMsg{}
		}
		return reloadMsg{snap: snap}
	}
}

func (m model) recommendCmd(title string) tea.Cmd {
	snap, posters := m.snap, m.posters
	return func() tea.Msg {
		recs, err := snap.Recommend(title, topK)
		if err != nil {
			return recsMsg{title: title, body: "Error: " + err.Error()}
		}
		if len(recs) == 0 {
			return recsMsg{title: title, body: "No recommendations - try another movie."}
		}

		var b strings.Builder
		for i, rec := range recs {
			fmt.Fprintf(&b, "%d. %s (score %.3f)\n", i+1, rec.Title, rec.Score)
			if posters != nil {
				if url, ok := posters.PosterURL(context.Background(), rec.MovieID); ok {
					fmt.Fprintf(&b, "   %s\n", url)
				} else {
					b.WriteString("   no poster available\n")
				}
			}
		}
		return recsMsg{title: title, body: b.String()}
	}
}

func (m model) filterTitles(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	var matches []string
	for _, title := range m.snap.Titles() {
		if query == "" || strings.Contains(strings.ToLower(title), query) {
			matches = append(matches, title)
			if len(matches) == maxMatches {
				break
			}
		}
	}
	return matches
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "up":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down":
			if m.cursor < len(m.matches)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if len(m.matches) == 0 {
				return m, nil
			}
			title := m.matches[m.cursor]
			m.status = fmt.Sprintf("Finding movies similar to %q...", title)
			return m, m.recommendCmd(title)
		}

		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		m.matches = m.filterTitles(m.searchInput.Value())
		m.cursor = 0
		return m, cmd

	case recsMsg:
		m.status = fmt.Sprintf("Movies similar to %q:", msg.title)
		m.results.SetContent(msg.body)
		m.results.GotoTop()
		return m, nil

	case watchMsg:
		return m, tea.Batch(reloadSnapshot(m.dataDir), waitForChange(m.watcher))

	case reloadMsg:
		if msg.snap != nil {
			m.snap = msg.snap
			m.matches = m.filterTitles(m.searchInput.Value())
			m.cursor = 0
			m.status = fmt.Sprintf("Reloaded %d movies", msg.snap.Len())
		}
		return m, nil

	case tea.WindowSizeMsg:
		resultsHeight := msg.Height - maxMatches - 5
		if resultsHeight < 3 {
			resultsHeight = 3
		}
		if !m.ready {
			m.results = viewport.New(msg.Width, resultsHeight)
			m.ready = true
		} else {
			m.results.Width = msg.Width
			m.results.Height = resultsHeight
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	lines := make([]string, 0, maxMatches)
	for i, title := range m.matches {
		if i == m.cursor {
			lines = append(lines, matchSelectedStyle.Render("» "+title))
		} else {
			lines = append(lines, matchStyle.Render("  "+title))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Reel Deal"),
		m.searchInput.View(),
		strings.Join(lines, "\n"),
		statusStyle.Render(m.status),
		m.results.View(),
		helpStyle.Render("↑/↓: select • enter: recommend • esc: quit"),
	)
}

// StartTUI runs the interactive picker. While it is running, a rebuilt
// artifact triple appearing in dataDir is picked up automatically and
// swapped in as a whole snapshot.
func StartTUI(snap *engine.Snapshot, posters *tmdb.Client, dataDir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		if err := watcher.Add(dataDir); err != nil {
			watcher.Close()
			watcher = nil
		}
	} else {
		watcher = nil
	}
	if watcher != nil {
		defer watcher.Close()
	}

	p := tea.NewProgram(
		initialModel(snap, posters, dataDir, watcher),
		tea.WithAltScreen(),
	)
	_, err = p.Run()
	return err
}

package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/mosaic/internal/browse"
	"github.com/abelbrown/mosaic/internal/favorites"
	"github.com/abelbrown/mosaic/internal/media"
	"github.com/abelbrown/mosaic/internal/session"
	"github.com/abelbrown/mosaic/internal/source/youtube"
)

// inputMode tracks what the query prompt is collecting.
type inputMode int

const (
	inputNone inputMode = iota
	inputSubreddit
	inputRedditSearch
	inputTags
	inputVideoSearch
)

var inputPrompts = map[inputMode]string{
	inputSubreddit:    "subreddit (comma for combined feed): ",
	inputRedditSearch: "search reddit: ",
	inputTags:         "tags: ",
	inputVideoSearch:  "search videos: ",
}

// Model is the root Bubble Tea model.
type Model struct {
	browser   *browse.Browser
	favorites *favorites.Service

	defaultSort string
	filter      media.Filter

	input  textinput.Model
	mode   inputMode
	spin   spinner.Model
	status string
	width  int
	height int
	scroll int
}

// New creates the root model.
func New(browser *browse.Browser, favs *favorites.Service, defaultSort string, filter media.Filter) Model {
	ti := textinput.New()
	ti.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	if defaultSort == "" {
		defaultSort = "hot"
	}
	if filter == "" {
		filter = media.FilterAll
	}

	return Model{
		browser:     browser,
		favorites:   favs,
		defaultSort: defaultSort,
		filter:      filter,
		input:       ti,
		spin:        sp,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

// fetchCmd runs a page fetch off the event loop and reports back.
func fetchCmd(fetch browse.Fetch) tea.Cmd {
	if fetch == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()
		return PageFetched{Result: fetch(ctx)}
	}
}

func clearStatusCmd() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusCleared{}
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case PageFetched:
		m.browser.Apply(msg.Result)
		return m, nil

	case statusCleared:
		m.status = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

// updateInput handles keys while the query prompt is open.
func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = inputNone
		m.input.Blur()
		return m, nil

	case "enter":
		query := strings.TrimSpace(m.input.Value())
		mode := m.mode
		m.mode = inputNone
		m.input.Blur()
		m.input.SetValue("")
		if query == "" {
			return m, nil
		}
		return m.openQuery(mode, query)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// openQuery opens (or reuses) a session for the submitted query.
func (m Model) openQuery(mode inputMode, query string) (tea.Model, tea.Cmd) {
	var (
		t     media.SourceType
		title string
		c     session.Criteria
	)

	switch mode {
	case inputSubreddit:
		t = media.SourceReddit
		title = "r/" + query
		c = session.Criteria{Subreddit: query, Sort: m.defaultSort}
	case inputRedditSearch:
		t = media.SourceReddit
		title = "search: " + query
		c = session.Criteria{Query: query, SearchMode: true, Sort: "relevance"}
	case inputTags:
		t = media.SourceBooru
		title = query
		c = session.Criteria{Tags: query}
	case inputVideoSearch:
		t = media.SourceYouTube
		title = "yt: " + query
		c = session.Criteria{Query: query}
	default:
		return m, nil
	}

	_, fetch, err := m.browser.Open(t, title, c)
	if err != nil {
		m.status = err.Error()
		return m, clearStatusCmd()
	}
	m.scroll = 0
	return m, fetchCmd(fetch)
}

// updateBrowse handles keys in the main browse view.
func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	sessions := m.browser.Sessions()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		sessions.Cycle()
		m.scroll = 0
		return m, nil

	case "ctrl+w":
		if id := sessions.ActiveID(); id != "" {
			sessions.Close(id)
			m.scroll = 0
		}
		return m, nil

	case "1":
		return m.prompt(inputSubreddit)
	case "2":
		return m.prompt(inputRedditSearch)
	case "3":
		return m.prompt(inputTags)
	case "4":
		return m.prompt(inputVideoSearch)

	case "f":
		m.filter = m.filter.Next()
		return m, nil

	case "o":
		// Cycle sort on the active reddit feed and re-query in place.
		sess, ok := sessions.Active()
		if !ok || sess.Type != media.SourceReddit || sess.Criteria.SearchMode {
			return m, nil
		}
		next := nextSort(sess.Criteria.Sort)
		sessions.UpdateCriteria(sess.ID, func(s *session.Session) {
			s.Criteria.Sort = next
		})
		fetch, ok := m.browser.NewQuery(sess.ID)
		if !ok {
			return m, nil
		}
		m.status = "sort: " + next
		m.scroll = 0
		return m, tea.Batch(fetchCmd(fetch), clearStatusCmd())

	case "r":
		// Retry / refresh: restart the active query from the top.
		if id := sessions.ActiveID(); id != "" {
			fetch, ok := m.browser.NewQuery(id)
			if ok {
				m.scroll = 0
				return m, fetchCmd(fetch)
			}
		}
		return m, nil

	case "j", "down":
		return m.moveSelection(1), nil
	case "k", "up":
		return m.moveSelection(-1), nil

	case "pgdown", "end":
		if id := sessions.ActiveID(); id != "" {
			if fetch, ok := m.browser.LoadMore(id); ok {
				return m, fetchCmd(fetch)
			}
		}
		return m, nil

	case "s":
		return m.toggleFavorite()
	}
	return m, nil
}

var sortCycle = []string{"hot", "new", "top", "best", "rising"}

func nextSort(current string) string {
	for i, s := range sortCycle {
		if s == current {
			return sortCycle[(i+1)%len(sortCycle)]
		}
	}
	return sortCycle[0]
}

func (m Model) prompt(mode inputMode) (tea.Model, tea.Cmd) {
	m.mode = mode
	m.input.Prompt = inputPrompts[mode]
	m.input.SetValue("")
	m.input.Focus()
	return m, textinput.Blink
}

// moveSelection shifts the selected index within the filtered view and
// auto-loads the next page when the end is reached.
func (m Model) moveSelection(delta int) Model {
	sess, ok := m.browser.Sessions().Active()
	if !ok {
		return m
	}
	visible := m.filter.Apply(sess.State.Items)
	if len(visible) == 0 {
		return m
	}

	sel := sess.State.Selected + delta
	if sel < 0 {
		sel = 0
	}
	if sel >= len(visible) {
		sel = len(visible) - 1
	}
	m.browser.Sessions().Update(sess.ID, func(st *session.State) {
		st.Selected = sel
	})
	return m
}

func (m Model) toggleFavorite() (tea.Model, tea.Cmd) {
	sess, ok := m.browser.Sessions().Active()
	if !ok || sess.State.Selected < 0 {
		return m, nil
	}
	visible := m.filter.Apply(sess.State.Items)
	if sess.State.Selected >= len(visible) {
		return m, nil
	}
	item := visible[sess.State.Selected]

	if m.favorites.IsFavorite(item.Source, item.ID) {
		m.favorites.RemoveMedia(item.Source, item.ID)
		m.status = "removed from favorites"
	} else {
		m.favorites.AddMedia(item)
		m.status = "saved to favorites"
	}
	return m, clearStatusCmd()
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewTabs())
	b.WriteString("\n")

	sess, ok := m.browser.Sessions().Active()
	if !ok {
		b.WriteString(dimStyle.Render("\n  no open sessions - press 1 (subreddit), 2 (reddit search), 3 (tags), 4 (videos)\n"))
	} else {
		b.WriteString(m.viewItems(sess))
	}

	b.WriteString("\n")
	b.WriteString(m.viewStatus(sess, ok))

	if m.mode != inputNone {
		b.WriteString("\n")
		b.WriteString(m.input.View())
	}
	return b.String()
}

func (m Model) viewTabs() string {
	sessions := m.browser.Sessions().All()
	if len(sessions) == 0 {
		return tabStyle.Render("mosaic")
	}

	activeID := m.browser.Sessions().ActiveID()
	tabs := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		label := sess.Title
		if color, ok := sourceColors[string(sess.Type)]; ok && sess.ID != activeID {
			label = lipgloss.NewStyle().Foreground(color).Padding(0, 1).Render(label)
		} else if sess.ID == activeID {
			label = activeTabStyle.Render(label)
		} else {
			label = tabStyle.Render(label)
		}
		tabs = append(tabs, label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// viewItems renders the filtered listing with the selection highlighted.
func (m Model) viewItems(sess session.Session) string {
	visible := m.filter.Apply(sess.State.Items)
	if len(visible) == 0 {
		if sess.State.Loading {
			return "\n  " + m.spin.View() + " loading...\n"
		}
		return dimStyle.Render("\n  nothing here\n")
	}

	rows := m.height - 6
	if rows < 5 {
		rows = 5
	}

	// Keep the selection in the visible window.
	scroll := m.scroll
	if sess.State.Selected >= 0 {
		if sess.State.Selected < scroll {
			scroll = sess.State.Selected
		}
		if sess.State.Selected >= scroll+rows {
			scroll = sess.State.Selected - rows + 1
		}
	}

	var b strings.Builder
	for i := scroll; i < len(visible) && i < scroll+rows; i++ {
		item := visible[i]
		line := fmt.Sprintf(" %s %-60s %6d pts  %s",
			typeGlyphs[string(item.Type)], truncate(item.Title, 60), item.Score, dimStyle.Render(itemMeta(item)))
		if item.NSFW {
			line += " " + nsfwStyle.Render("nsfw")
		}
		if i == sess.State.Selected {
			line = selectedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) viewStatus(sess session.Session, ok bool) string {
	parts := []string{dimStyle.Render("filter:" + string(m.filter))}

	if ok {
		visible := len(m.filter.Apply(sess.State.Items))
		parts = append(parts, dimStyle.Render(fmt.Sprintf("%d/%d items", visible, len(sess.State.Items))))
		if sess.State.Loading {
			parts = append(parts, m.spin.View()+" loading")
		} else if sess.State.HasMore {
			parts = append(parts, dimStyle.Render("more available (pgdn)"))
		}
		if sess.State.Err != nil {
			parts = append(parts, errorStyle.Render(sess.State.Err.Error()+" - press r to retry"))
		}
	}
	if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	return strings.Join(parts, "  ")
}

// itemMeta renders per-source detail for the right column.
func itemMeta(item media.Item) string {
	switch item.Source {
	case media.SourceReddit:
		return "r/" + item.Subreddit + " by " + item.Author
	case media.SourceYouTube:
		if item.Video != nil {
			return item.Author + " " + youtube.FormatDuration(item.Video.Duration)
		}
		return item.Author
	default:
		return item.Author
	}
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"codequest/internal/engine"
	"codequest/internal/storage"
)

type boardModel struct {
	ctx        context.Context
	svc        *engine.Service
	profileKey string

	width  int
	height int

	profile  *storage.Profile
	tracks   []storage.Track
	quests   []storage.Quest
	progress map[int64]storage.QuestProgress
	run      *storage.BossRun
	runBoss  *storage.Boss
	plan     *engine.DailyPracticePlan

	selected int
	lastLog  string
	loading  bool
	err      error
}

type loadedMsg struct {
	profile  *storage.Profile
	tracks   []storage.Track
	quests   []storage.Quest
	progress map[int64]storage.QuestProgress
	run      *storage.BossRun
	runBoss  *storage.Boss
	plan     *engine.DailyPracticePlan
	err      error
}

func newBoardModel(ctx context.Context, svc *engine.Service, profileKey string) boardModel {
	return boardModel{
		ctx:        ctx,
		svc:        svc,
		profileKey: profileKey,
		loading:    true,
		lastLog:    "Loaded.",
	}
}

func (m boardModel) Init() tea.Cmd {
	return m.loadCmd()
}

func (m boardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		p, err := m.svc.ProfileRepo().GetOrCreate(m.ctx, m.profileKey)
		if err != nil {
			return loadedMsg{err: err}
		}
		tracks, err := m.svc.QuestRepo().ListTracks(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		quests, err := m.svc.QuestRepo().ListAll(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		rows, err := m.svc.ProgressRepo().ListByProfile(m.ctx, m.profileKey)
		if err != nil {
			return loadedMsg{err: err}
		}
		progress := make(map[int64]storage.QuestProgress, len(rows))
		for _, r := range rows {
			progress[r.QuestID] = r
		}
		run, err := m.svc.BossRepo().ActiveRun(m.ctx, m.profileKey)
		if err != nil {
			return loadedMsg{err: err}
		}
		var runBoss *storage.Boss
		if run != nil {
			runBoss, err = m.svc.BossRepo().Get(m.ctx, run.BossID)
			if err != nil {
				return loadedMsg{err: err}
			}
		}
		plan, err := m.svc.DailyPlan(m.ctx, m.profileKey, time.Now().UTC(), 0, nil, nil)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{profile: p, tracks: tracks, quests: quests, progress: progress, run: run, runBoss: runBoss, plan: plan}
	}
}

func (m boardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.lastLog = "Load failed: " + msg.err.Error()
			return m, nil
		}
		m.profile = msg.profile
		m.tracks = msg.tracks
		m.quests = msg.quests
		m.progress = msg.progress
		m.run = msg.run
		m.runBoss = msg.runBoss
		m.plan = msg.plan
		m.lastLog = fmt.Sprintf("Refreshed at %s.", time.Now().Format("15:04:05"))
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "r":
			m.loading = true
			m.lastLog = "Refreshing…"
			return m, m.loadCmd()
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.selected < len(m.quests)-1 {
				m.selected++
			}
			return m, nil
		}
	}
	return m, nil
}

func (m boardModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress q to quit.\n"
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMain()
	footer := "\n" + m.lastLog

	// Simple 2-column layout.
	leftW := 30
	if m.width > 0 {
		maxLeft := m.width / 2
		if maxLeft < leftW {
			leftW = maxLeft
		}
		if leftW < 20 {
			leftW = 20
		}
	}

	linesLeft := strings.Split(sidebar, "\n")
	linesRight := strings.Split(main, "\n")
	max := len(linesLeft)
	if len(linesRight) > max {
		max = len(linesRight)
	}

	var body strings.Builder
	for i := 0; i < max; i++ {
		l := ""
		r := ""
		if i < len(linesLeft) {
			l = linesLeft[i]
		}
		if i < len(linesRight) {
			r = linesRight[i]
		}
		body.WriteString(padRight(l, leftW))
		body.WriteString("  ")
		body.WriteString(r)
		body.WriteString("\n")
	}

	return header + "\n" + body.String() + footer
}

func (m boardModel) renderHeader() string {
	if m.profile == nil {
		return "Codequest (loading)"
	}
	integrity := progressBar(m.profile.Integrity, 100, 20)
	return fmt.Sprintf("Codequest | Profile: %s | XP %d | Integrity %d %s",
		m.profile.Key, m.profile.XP, m.profile.Integrity, integrity)
}

func (m boardModel) renderSidebar() string {
	lines := []string{"Today's Gauntlet"}
	if m.plan == nil || len(m.plan.Items) == 0 {
		lines = append(lines, "(nothing queued)")
	} else {
		if m.plan.Stats.StreakDays > 0 {
			lines = append(lines, fmt.Sprintf("streak: %d days", m.plan.Stats.StreakDays))
		}
		for i, item := range m.plan.Items {
			lines = append(lines, fmt.Sprintf("%d. [%s] %s", i+1, item.Difficulty, item.Title))
		}
	}
	lines = append(lines, "")
	if m.run != nil {
		name := fmt.Sprintf("boss %d", m.run.BossID)
		maxHP := m.run.HPRemaining
		if m.runBoss != nil {
			name = m.runBoss.Title
			maxHP = m.runBoss.MaxHP
		}
		lines = append(lines, "Active Encounter")
		lines = append(lines, fmt.Sprintf("%s %s", name, progressBar(m.run.HPRemaining, maxHP, 14)))
		lines = append(lines, "")
	}
	lines = append(lines, "Keys")
	lines = append(lines, "- ↑/↓ or j/k: move")
	lines = append(lines, "- r: refresh")
	lines = append(lines, "- q: quit")
	return strings.Join(lines, "\n")
}

func (m boardModel) renderMain() string {
	if m.loading {
		return "Loading…"
	}
	var out []string
	out = append(out, "Quest Log")
	if len(m.quests) == 0 {
		out = append(out, "(empty; run `cq seed`)")
		return strings.Join(out, "\n")
	}

	trackTitles := make(map[int64]string, len(m.tracks))
	for _, t := range m.tracks {
		trackTitles[t.ID] = t.Title
	}

	lastTrack := ""
	for i, q := range m.quests {
		track := ""
		if q.TrackID != nil {
			track = trackTitles[*q.TrackID]
		}
		if track != lastTrack {
			out = append(out, "")
			out = append(out, track)
			lastTrack = track
		}
		cursor := "  "
		if i == m.selected {
			cursor = "> "
		}
		state := "available"
		detail := ""
		if p, ok := m.progress[q.ID]; ok {
			state = p.State
			detail = fmt.Sprintf(" best=%d attempts=%d", p.BestScore, p.Attempts)
		}
		out = append(out, fmt.Sprintf("%s%s %s%s", cursor, stateIcon(state), q.Title, detail))
	}
	return strings.Join(out, "\n")
}

func stateIcon(state string) string {
	switch state {
	case "mastered":
		return "★"
	case "completed":
		return "✓"
	case "in_progress":
		return "…"
	case "locked":
		return "🔒"
	default:
		return "·"
	}
}

func progressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	ratio := float64(value) / float64(total)
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) >= width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/list"
	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/logger"
)

type state int

const (
	Processing state = iota
	Finished
	Failed
)

type stepMsg core.StepEvent

type outcomeMsg Outcome

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	checkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBA08"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
	createdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// generateCmdModel shows pipeline progress while a job runs on the engine.
type generateCmdModel struct {
	title          string
	spinner        spinner.Model
	progress       progress.Model
	state          state
	completedSteps []core.StepEvent
	total          int
	result         *core.GenerationResult
	err            error
	job            Job
	engine         *Engine
	publisher      *CliStepPublisher
	logger         logger.Logger
}

func newGenerateModel(title string, job Job, engine *Engine, publisher *CliStepPublisher, l logger.Logger) generateCmdModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("202"))

	return generateCmdModel{
		title:     title,
		spinner:   s,
		progress:  progress.New(progress.WithGradient("#FFBA08", "#F48C06"), progress.WithWidth(40)),
		state:     Processing,
		job:       job,
		engine:    engine,
		publisher: publisher,
		logger:    l,
	}
}

func (m generateCmdModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.handleGeneration())
}

func (m generateCmdModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleQuit(msg)
	case stepMsg:
		return m.handleStep(core.StepEvent(msg))
	case stepError:
		m.logger.Error(fmt.Sprintf("Step %s failed: %v", msg.ev.ID, msg.err))
		return m, m.listenForNextStep
	case outcomeMsg:
		return m.handleOutcome(Outcome(msg))
	case spinner.TickMsg:
		if m.state != Processing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m generateCmdModel) View() string {
	switch m.state {
	case Finished:
		return renderSummary(m.title, m.result) + "\n"
	case Failed:
		return renderFailure(m.title, m.completedSteps, m.err) + "\n"
	}

	enumerator := func(l list.Items, i int) string {
		if i < len(m.completedSteps) {
			return checkStyle.Render("✓")
		}
		return m.spinner.View()
	}
	l := list.New().Enumerator(enumerator)
	for _, ev := range m.completedSteps {
		l.Item(fmt.Sprintf("%s %s", ev.ID, faintStyle.Render("("+ev.Phase.String()+")")))
	}
	l.Item("Working...")

	var ratio float64
	if m.total > 0 {
		ratio = float64(len(m.completedSteps)) / float64(m.total)
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s\n", titleStyle.Render(m.title), l, m.progress.ViewAs(ratio))
}

func (m *generateCmdModel) handleGeneration() tea.Cmd {
	resultChan := m.engine.Submit(m.job)
	waitForOutcome := func() tea.Msg {
		return outcomeMsg(<-resultChan)
	}
	return tea.Batch(m.listenForNextStep, waitForOutcome)
}

func (m *generateCmdModel) listenForNextStep() tea.Msg {
	select {
	case ev := <-m.publisher.stepChan:
		return stepMsg(ev)
	case err := <-m.publisher.errorChan:
		return err
	}
}

func (m generateCmdModel) handleStep(ev core.StepEvent) (tea.Model, tea.Cmd) {
	m.logger.Debug(fmt.Sprintf("Received step: %s", ev.ID))
	m.completedSteps = append(m.completedSteps, ev)
	m.total = ev.Total
	if m.state != Processing {
		return m, nil
	}
	return m, m.listenForNextStep
}

func (m generateCmdModel) handleOutcome(o Outcome) (tea.Model, tea.Cmd) {
	// Steps published just before the run returned may still be queued.
	for drained := false; !drained; {
		select {
		case ev := <-m.publisher.stepChan:
			m.completedSteps = append(m.completedSteps, ev)
		default:
			drained = true
		}
	}
	if o.Err != nil {
		m.state = Failed
		m.err = o.Err
		return m, tea.Quit
	}
	m.state = Finished
	m.result = o.Result
	return m, tea.Quit
}

func (m generateCmdModel) handleQuit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
		m.logger.Debug("User interrupted the generation run")
		message := faintStyle.Render("Interrupted. Files already written are kept; rerun to finish.")
		return m, tea.Sequence(tea.Printf("%s", message), tea.Quit)
	}
	return m, nil
}

// renderSummary formats a finished run for the terminal.
func renderSummary(title string, res *core.GenerationResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if res == nil {
		return b.String()
	}

	if len(res.Created) > 0 {
		l := list.New().Enumerator(func(list.Items, int) string { return createdStyle.Render("+") })
		for _, p := range res.Created {
			l.Item(p)
		}
		fmt.Fprintf(&b, "\nCreated %d files\n%s\n", len(res.Created), l)
	}
	if len(res.Skipped) > 0 {
		fmt.Fprintf(&b, "\n%s\n", faintStyle.Render(fmt.Sprintf("Skipped %d existing files", len(res.Skipped))))
	}
	if res.SettingsUpdated {
		b.WriteString("\nSettings updated")
	}
	if res.BuildLogicUpdated {
		b.WriteString("\nBuild logic updated")
	}
	if msg := strings.TrimSpace(res.Message); msg != "" {
		fmt.Fprintf(&b, "\n\n%s", msg)
	}
	if !res.Changed() && strings.TrimSpace(res.Message) == "" {
		b.WriteString("\n" + faintStyle.Render("Everything is up to date."))
	}
	return b.String()
}

func renderFailure(title string, done []core.StepEvent, err error) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, ev := range done {
		fmt.Fprintf(&b, "%s %s\n", checkStyle.Render("✓"), ev.ID)
	}
	b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", err)))
	return b.String()
}

// runWithProgress runs job on a fresh engine behind the progress view and
// returns the run's outcome.
func runWithProgress(ctx context.Context, title string, job Job, publisher *CliStepPublisher, l logger.Logger) (*core.GenerationResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	engine := NewEngine(l)
	engine.Start(ctx)
	defer stopEngine(cancel, engine, 5*time.Second)

	final, err := tea.NewProgram(newGenerateModel(title, job, engine, publisher, l)).Run()
	if err != nil {
		return nil, fmt.Errorf("error running program: %w", err)
	}
	m := final.(generateCmdModel)
	switch m.state {
	case Finished:
		return m.result, nil
	case Failed:
		return nil, m.err
	default:
		return nil, context.Canceled
	}
}

// stopEngine cancels the run context before waiting on the worker, so an
// interrupted run stops at its next step boundary.
func stopEngine(cancel context.CancelFunc, engine *Engine, timeout time.Duration) {
	cancel()
	engine.Shutdown(timeout)
}

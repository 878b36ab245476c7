package tui

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/mpcalc/internal/errors"
	"github.com/agbru/mpcalc/internal/mp"
	"github.com/agbru/mpcalc/internal/orchestration"
	"github.com/agbru/mpcalc/internal/sysmon"
)

// Options configures the dashboard.
type Options struct {
	// Radix renders the agreed value; 0 means 10.
	Radix int
	// Version is shown in the title line.
	Version string
}

// Status is the state of one strategy row.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusComplete
	StatusError
)

// strategyRow is one line of the strategy table.
type strategyRow struct {
	name     string
	progress float64
	duration time.Duration
	status   Status
	err      error
}

// Model is the bubbletea model of the comparison dashboard.
type Model struct {
	keys   KeyMap
	help   help.Model
	styles styles

	parentCtx context.Context
	ctx       context.Context
	cancel    context.CancelFunc
	ref       *programRef

	strategies []orchestration.Strategy
	in         orchestration.Inputs
	opts       Options

	rows       []strategyRow
	results    []orchestration.CalculationResult
	final      *orchestration.CalculationResult
	runErr     error
	consistent bool
	cursor     int
	showFull   bool
	sys        sysmon.Stats

	start      time.Time
	elapsed    time.Duration
	generation uint64
	done       bool
	exitCode   int
	width      int
}

// NewModel creates the dashboard for one comparison of strategies on in.
func NewModel(parentCtx context.Context, strategies []orchestration.Strategy, in orchestration.Inputs, opts Options) Model {
	ctx, cancel := context.WithCancel(parentCtx)
	m := Model{
		keys:       DefaultKeyMap(),
		help:       help.New(),
		styles:     newStyles(),
		parentCtx:  parentCtx,
		ctx:        ctx,
		cancel:     cancel,
		ref:        &programRef{},
		strategies: strategies,
		in:         in,
		opts:       opts,
		exitCode:   apperrors.ExitSuccess,
	}
	m.resetRows()
	return m
}

func (m *Model) resetRows() {
	m.rows = make([]strategyRow, len(m.strategies))
	for i, s := range m.strategies {
		m.rows[i] = strategyRow{name: s.Name(), status: StatusRunning}
	}
	m.results, m.final, m.runErr = nil, nil, nil
	m.consistent = false
	m.start = time.Now()
	m.elapsed = 0
	m.done = false
	m.exitCode = apperrors.ExitSuccess
}

// Init starts the comparison and the refresh ticker.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		sampleSysStatsCmd(),
		startComparisonCmd(m.ref, m.ctx, m.strategies, m.in, m.opts, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case ProgressMsg:
		if msg.Generation == m.generation && msg.StrategyIndex >= 0 && msg.StrategyIndex < len(m.rows) {
			m.rows[msg.StrategyIndex].progress = min(max(msg.Value, 0), 1)
		}
		return m, nil

	case ComparisonResultsMsg:
		if msg.Generation == m.generation {
			m.applyResults(msg.Results)
		}
		return m, nil

	case FinalResultMsg:
		if msg.Generation == m.generation {
			res := msg.Result
			m.final = &res
		}
		return m, nil

	case ErrorMsg:
		if msg.Generation == m.generation {
			m.runErr = msg.Err
		}
		return m, nil

	case CalculationCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.elapsed = time.Since(m.start)
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation || m.done {
			return m, nil
		}
		m.done = true
		m.runErr = msg.Err
		m.exitCode = apperrors.ExitCodeFor(msg.Err)
		return m, tea.Quit

	case TickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Since(m.start)
		return m, tea.Batch(sampleSysStatsCmd(), tickCmd())

	case SysStatsMsg:
		m.sys = sysmon.Stats(msg)
		return m, nil
	}
	return m, nil
}

// applyResults updates the rows from the sorted results and checks that
// every successful strategy agrees.
func (m *Model) applyResults(results []orchestration.CalculationResult) {
	m.results = results
	var first *mp.Int
	m.consistent = true
	for _, res := range results {
		for i := range m.rows {
			if m.rows[i].name != res.Name {
				continue
			}
			m.rows[i].duration = res.Duration
			m.rows[i].err = res.Err
			if res.Err != nil {
				m.rows[i].status = StatusError
			} else {
				m.rows[i].status = StatusComplete
				m.rows[i].progress = 1
			}
		}
		if res.Err != nil {
			continue
		}
		if first == nil {
			first = res.Result
		} else if res.Result.Cmp(first) != mp.EQ {
			m.consistent = false
		}
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Rerun):
		m.cancel()
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)
		m.resetRows()
		return m, tea.Batch(
			tickCmd(),
			startComparisonCmd(m.ref, m.ctx, m.strategies, m.in, m.opts, m.generation),
			watchContextCmd(m.ctx, m.generation),
		)

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Details):
		m.showFull = !m.showFull
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// ExitCode is the exit code of the last finished run.
func (m Model) ExitCode() int { return m.exitCode }

// Run shows the dashboard until the user quits and returns the exit code of
// the last comparison.
func Run(ctx context.Context, strategies []orchestration.Strategy, in orchestration.Inputs, opts Options) int {
	model := NewModel(ctx, strategies, in, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	// The bridge goroutines need the program before it starts.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		if m.done {
			return m.exitCode
		}
	}
	if err != nil {
		return apperrors.ExitCodeFor(ctx.Err())
	}
	return apperrors.ExitErrorCanceled
}

// startComparisonCmd runs the strategies and reports through the bridge.
func startComparisonCmd(ref *programRef, ctx context.Context, strategies []orchestration.Strategy, in orchestration.Inputs, opts Options, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref, gen: gen}
		presenter := &TUIResultPresenter{ref: ref, gen: gen}
		results := orchestration.ExecuteStrategies(ctx, strategies, in, reporter, io.Discard)
		code := orchestration.AnalyzeComparisonResults(results, orchestration.PresentationOptions{Radix: opts.Radix}, presenter, io.Discard)
		return CalculationCompleteMsg{ExitCode: code, Generation: gen}
	}
}

// tickCmd sends a TickMsg after 250ms.
func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleSysStatsCmd samples host CPU and memory usage.
func sampleSysStatsCmd() tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg(sysmon.Sample())
	}
}

// watchContextCmd waits for the run context to end.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}

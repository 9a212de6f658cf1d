package ui

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ExploreResult is the rendered outcome of one analysis, stage by stage.
// The explorer is deliberately decoupled from the pipeline packages: the
// caller supplies an AnalyzeFunc that returns pre-formatted lines.
type ExploreResult struct {
	Sections []ExploreSection
	Err      error
}

// ExploreSection is one stage's worth of result lines.
type ExploreSection struct {
	Title string
	Lines []string
}

// AnalyzeFunc runs the pipeline for the typed query text.
type AnalyzeFunc func(query string) ExploreResult

// Explorer is an interactive sequence explorer: type a sequence, hit
// enter, watch the per-stage results come back. The sparkline under the
// input renders the growth curve log(|a_n|+1) of the typed terms.
type Explorer struct {
	input    textinput.Model
	spin     spinner.Model
	styles   Styles
	analyze  AnalyzeFunc
	running  bool
	result   *ExploreResult
	quitting bool
	width    int
}

type exploreDoneMsg ExploreResult

// NewExplorer builds the explorer model around an analyze callback.
func NewExplorer(analyze AnalyzeFunc, noColor bool) *Explorer {
	input := textinput.New()
	input.Placeholder = "1, 1, 2, 3, 5, 8, ..."
	input.Prompt = "sequence> "
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &Explorer{
		input:   input,
		spin:    spin,
		styles:  GetStyles(noColor),
		analyze: analyze,
		width:   80,
	}
}

// Init implements tea.Model.
func (e *Explorer) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width = msg.Width
		return e, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			e.quitting = true
			return e, tea.Quit
		case "enter":
			if e.running || strings.TrimSpace(e.input.Value()) == "" {
				return e, nil
			}
			e.running = true
			e.result = nil
			query := e.input.Value()
			run := func() tea.Msg {
				return exploreDoneMsg(e.analyze(query))
			}
			return e, tea.Batch(e.spin.Tick, run)
		}

	case exploreDoneMsg:
		res := ExploreResult(msg)
		e.running = false
		e.result = &res
		return e, nil

	case spinner.TickMsg:
		if !e.running {
			return e, nil
		}
		var cmd tea.Cmd
		e.spin, cmd = e.spin.Update(msg)
		return e, cmd
	}

	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	return e, cmd
}

// View implements tea.Model.
func (e *Explorer) View() string {
	if e.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(e.styles.Header.Render("oeismatch explorer"))
	b.WriteString("\n\n")
	b.WriteString(e.input.View())
	b.WriteString("\n")

	if spark := e.renderGrowthCurve(); spark != "" {
		b.WriteString(e.styles.Sparkline.Render(spark))
		b.WriteString(" ")
		b.WriteString(e.styles.Dim.Render("growth ─"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case e.running:
		b.WriteString(e.spin.View())
		b.WriteString(" searching...\n")
	case e.result != nil:
		b.WriteString(e.renderResult())
	default:
		b.WriteString(e.styles.Dim.Render("enter a sequence and press enter; esc quits"))
		b.WriteString("\n")
	}

	return b.String()
}

func (e *Explorer) renderResult() string {
	if e.result.Err != nil {
		return e.styles.Error.Render("error: "+e.result.Err.Error()) + "\n"
	}

	var b strings.Builder
	total := 0
	for _, sec := range e.result.Sections {
		total += len(sec.Lines)
		if len(sec.Lines) == 0 {
			continue
		}
		b.WriteString(e.styles.Label.Render(sec.Title))
		b.WriteString("\n")
		for _, line := range sec.Lines {
			b.WriteString("  " + line + "\n")
		}
		b.WriteString("\n")
	}
	if total == 0 {
		b.WriteString(e.styles.Warning.Render("no matches") + "\n")
	}
	return lipgloss.NewStyle().Width(e.width).Render(b.String())
}

// renderGrowthCurve draws a sparkline of log(|a_n|+1) over the typed terms.
func (e *Explorer) renderGrowthCurve() string {
	terms := parseLooseTerms(e.input.Value())
	if len(terms) < 2 {
		return ""
	}

	spark := NewSparkline(len(terms))
	for _, t := range terms {
		abs := new(big.Float).SetInt(new(big.Int).Abs(t))
		f, _ := abs.Float64()
		spark.Add(math.Log(f + 1))
	}
	return spark.RenderWithWidth(len(terms))
}

// parseLooseTerms extracts the integers typed so far, skipping partial or
// wildcard tokens; display only, the real parser runs on submit.
func parseLooseTerms(text string) []*big.Int {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	var out []*big.Int
	for _, f := range fields {
		if v, ok := new(big.Int).SetString(f, 10); ok {
			out = append(out, v)
		}
	}
	return out
}

// RunExplorer starts the interactive explorer program.
func RunExplorer(analyze AnalyzeFunc, noColor bool) error {
	_, err := tea.NewProgram(NewExplorer(analyze, noColor), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("explorer failed: %w", err)
	}
	return nil
}

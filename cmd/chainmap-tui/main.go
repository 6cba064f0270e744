package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/redgraph/chainmap/pkg/chain"
	"github.com/redgraph/chainmap/pkg/client"
	"github.com/redgraph/chainmap/pkg/editor"
	"github.com/redgraph/chainmap/pkg/selection"
	"github.com/redgraph/chainmap/pkg/topology"
)

const requestTimeout = 10 * time.Second

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF5555")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	pickBannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Padding(0, 1)

	branchMarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

// chainColors is the palette the color key cycles through
var chainColors = []string{"#FF5555", "#FFAA00", "#55FF55", "#5555FF", "#FF55FF", "#55FFFF"}

type view int

const (
	topologyView view = iota
	chainsView
	editorView
)

type keyMap struct {
	Tab    key.Binding
	Enter  key.Binding
	Space  key.Binding
	New    key.Binding
	Pick   key.Binding
	Remove key.Binding
	Branch key.Binding
	MoveUp key.Binding
	MoveDn key.Binding
	Notes  key.Binding
	Rename key.Binding
	Color  key.Binding
	Save   key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select/open"),
	),
	Space: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "toggle select"),
	),
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new chain from selection"),
	),
	Pick: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pick next step"),
	),
	Remove: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "remove step"),
	),
	Branch: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "toggle branch point"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "move step up"),
	),
	MoveDn: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "move step down"),
	),
	Notes: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "edit method notes"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename chain"),
	),
	Color: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cycle color"),
	),
	Save: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "save chain"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Pick, k.Save, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter, k.Space, k.New},
		{k.Pick, k.Remove, k.Branch, k.MoveUp, k.MoveDn},
		{k.Notes, k.Rename, k.Color, k.Save, k.Cancel, k.Quit},
	}
}

// inputTarget says which field the text input is currently editing
type inputTarget int

const (
	inputNone inputTarget = iota
	inputNotes
	inputName
)

type model struct {
	api       *client.Client
	sel       *selection.Store
	ctrl      *editor.Controller
	projectID string

	currentView view
	nodes       []*topology.Node
	refByID     map[string]topology.NodeRef
	chains      []chain.Summary
	colorIdx    int

	nodeTable  table.Model
	chainTable table.Model
	stepTable  table.Model
	input      textinput.Model
	target     inputTarget
	help       help.Model
	keys       keyMap

	width      int
	height     int
	message    string
	messageErr bool
}

func initialModel(api *client.Client, projectID string, nodes []*topology.Node, chains []chain.Summary) model {
	sel := selection.NewStore()
	ctrl := editor.NewController(api, sel, nil)

	ti := textinput.New()
	ti.CharLimit = 200
	ti.Width = 60

	nt := newStyledTable([]table.Column{
		{Title: "Label", Width: 30},
		{Title: "Kind", Width: 10},
		{Title: "Sel", Width: 4},
	})
	ct := newStyledTable([]table.Column{
		{Title: "Name", Width: 28},
		{Title: "Color", Width: 9},
		{Title: "Steps", Width: 6},
	})
	st := newStyledTable([]table.Column{
		{Title: "#", Width: 3},
		{Title: "Target", Width: 28},
		{Title: "Branch", Width: 7},
		{Title: "Notes", Width: 34},
	})

	m := model{
		api:        api,
		sel:        sel,
		ctrl:       ctrl,
		projectID:  projectID,
		nodes:      nodes,
		refByID:    make(map[string]topology.NodeRef, len(nodes)),
		chains:     chains,
		nodeTable:  nt,
		chainTable: ct,
		stepTable:  st,
		input:      ti,
		help:       help.New(),
		keys:       keys,
	}
	for _, n := range nodes {
		m.refByID[n.Ref.ID] = n.Ref
	}
	m.refreshNodeTable()
	m.refreshChainTable()
	return m
}

func newStyledTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF5555")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if m.target != inputNone {
			return m.updateInput(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % 3
			m.message = ""

		case key.Matches(msg, m.keys.Enter):
			m.handleEnter()

		case key.Matches(msg, m.keys.Space):
			if m.currentView == topologyView {
				if node := m.cursorNode(); node != nil {
					m.sel.ToggleNode(node.Ref.ID)
					m.refreshNodeTable()
				}
			}

		case key.Matches(msg, m.keys.New):
			if m.currentView == chainsView {
				m.createChainFromSelection()
			}

		case key.Matches(msg, m.keys.Pick):
			if err := m.ctrl.EnterPickMode(); err != nil {
				m.setError(err)
			} else {
				m.currentView = topologyView
				m.setInfo("pick mode: choose the next step's target")
			}

		case key.Matches(msg, m.keys.Remove):
			if m.currentView == editorView {
				if step := m.cursorStep(); step != nil {
					if err := m.ctrl.RemoveStep(step.ID); err != nil {
						m.setError(err)
					} else {
						m.refreshStepTable()
					}
				}
			}

		case key.Matches(msg, m.keys.Branch):
			if m.currentView == editorView {
				if step := m.cursorStep(); step != nil {
					if err := m.ctrl.ToggleBranchPoint(step.ID); err != nil {
						m.setError(err)
					} else {
						m.refreshStepTable()
					}
				}
			}

		case key.Matches(msg, m.keys.MoveUp):
			m.moveStep(-1)

		case key.Matches(msg, m.keys.MoveDn):
			m.moveStep(1)

		case key.Matches(msg, m.keys.Notes):
			if m.currentView == editorView {
				if step := m.cursorStep(); step != nil {
					m.target = inputNotes
					m.input.SetValue(step.MethodNotes)
					m.input.Placeholder = "exploited CVE-2024-..., pivoted via..."
					m.input.Focus()
				}
			}

		case key.Matches(msg, m.keys.Rename):
			if m.currentView == editorView {
				if draft := m.ctrl.Draft(); draft != nil {
					m.target = inputName
					m.input.SetValue(draft.Name)
					m.input.Placeholder = "chain name"
					m.input.Focus()
				}
			}

		case key.Matches(msg, m.keys.Color):
			m.cycleColor()

		case key.Matches(msg, m.keys.Save):
			m.saveChain()

		case key.Matches(msg, m.keys.Cancel):
			if m.ctrl.PickActive() {
				m.ctrl.CancelPickMode()
				m.currentView = editorView
				m.setInfo("pick cancelled")
			} else if err := m.ctrl.Cancel(); err != nil {
				m.setError(err)
			} else {
				m.currentView = chainsView
				m.setInfo("edit cancelled, changes discarded")
			}
		}
	}

	switch m.currentView {
	case topologyView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	case chainsView:
		m.chainTable, cmd = m.chainTable.Update(msg)
		cmds = append(cmds, cmd)
	case editorView:
		m.stepTable, cmd = m.stepTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		value := m.input.Value()
		switch m.target {
		case inputNotes:
			if step := m.cursorStep(); step != nil {
				if err := m.ctrl.SetMethodNotes(step.ID, value); err != nil {
					m.setError(err)
				}
			}
		case inputName:
			if draft := m.ctrl.Draft(); draft != nil {
				if err := m.ctrl.SetMetadata(value, draft.Description, draft.Color); err != nil {
					m.setError(err)
				}
			}
		}
		m.target = inputNone
		m.input.Blur()
		m.refreshStepTable()
		return m, nil

	case "esc":
		m.target = inputNone
		m.input.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleEnter routes the enter key: in the topology view it is the node
// click (step pick when armed, plain selection otherwise); in the chains
// view it opens the chain under the cursor for editing.
func (m *model) handleEnter() {
	switch m.currentView {
	case topologyView:
		node := m.cursorNode()
		if node == nil {
			return
		}
		if m.ctrl.PickActive() {
			step := m.ctrl.HandleNodeClick(node.Ref)
			if step != nil {
				m.currentView = editorView
				m.refreshStepTable()
				m.setInfo(fmt.Sprintf("step %d added: %s", step.SequenceOrder, node.Label))
			}
			return
		}
		m.sel.SelectNode(node.Ref.ID)
		m.refreshNodeTable()

	case chainsView:
		idx := m.chainTable.Cursor()
		if idx < 0 || idx >= len(m.chains) {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := m.ctrl.Open(ctx, m.chains[idx].ID); err != nil {
			m.setError(err)
			return
		}
		m.currentView = editorView
		m.refreshStepTable()
		m.setInfo("editing " + m.chains[idx].Name)
	}
}

func (m *model) createChainFromSelection() {
	selected := m.sel.Selected()
	if len(selected) == 0 {
		m.message = "select at least one node first (space in Topology)"
		m.messageErr = true
		return
	}

	draft := &chain.Draft{
		Name:  fmt.Sprintf("chain %s", time.Now().Format("15:04:05")),
		Color: chainColors[m.colorIdx%len(chainColors)],
	}
	for _, id := range selected {
		ref, ok := m.refByID[id]
		if !ok {
			continue
		}
		draft.Steps = append(draft.Steps, chain.NewStep(ref))
	}
	draft.Normalize()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	created, err := m.api.CreateChain(ctx, m.projectID, draft)
	if err != nil {
		m.setError(err)
		return
	}

	m.sel.ClearSelection()
	m.refreshNodeTable()
	m.reloadChains()
	m.setInfo(fmt.Sprintf("created %q with %d steps", created.Name, len(created.Steps)))
}

func (m *model) moveStep(delta int) {
	if m.currentView != editorView {
		return
	}
	step := m.cursorStep()
	if step == nil {
		return
	}
	if err := m.ctrl.MoveStep(step.ID, step.SequenceOrder+delta); err != nil {
		m.setError(err)
		return
	}
	m.refreshStepTable()
	m.stepTable.SetCursor(step.SequenceOrder - 1)
}

func (m *model) cycleColor() {
	draft := m.ctrl.Draft()
	if draft == nil {
		return
	}
	m.colorIdx++
	color := chainColors[m.colorIdx%len(chainColors)]
	if err := m.ctrl.SetMetadata(draft.Name, draft.Description, color); err != nil {
		m.setError(err)
		return
	}
	m.setInfo("color set to " + color)
}

func (m *model) saveChain() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	saved, err := m.ctrl.Save(ctx)
	if err != nil {
		m.setError(err)
		return
	}
	m.currentView = chainsView
	m.reloadChains()
	m.setInfo(fmt.Sprintf("saved %q (%d steps)", saved.Name, len(saved.Steps)))
}

func (m *model) reloadChains() {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	chains, err := m.api.FetchChainsForProject(ctx, m.projectID)
	if err != nil {
		m.setError(err)
		return
	}
	m.chains = chains
	m.refreshChainTable()
}

func (m *model) cursorNode() *topology.Node {
	idx := m.nodeTable.Cursor()
	if idx < 0 || idx >= len(m.nodes) {
		return nil
	}
	return m.nodes[idx]
}

func (m *model) cursorStep() *chain.Step {
	draft := m.ctrl.Draft()
	if draft == nil {
		return nil
	}
	idx := m.stepTable.Cursor()
	if idx < 0 || idx >= len(draft.Steps) {
		return nil
	}
	return draft.Steps[idx]
}

func (m *model) refreshNodeTable() {
	rows := make([]table.Row, 0, len(m.nodes))
	for _, n := range m.nodes {
		mark := ""
		if m.sel.IsSelected(n.Ref.ID) {
			mark = "*"
		}
		label := n.Label
		if n.Ref.Kind == topology.KindService {
			label = "  " + label
		}
		rows = append(rows, table.Row{label, string(n.Ref.Kind), mark})
	}
	m.nodeTable.SetRows(rows)
}

func (m *model) refreshChainTable() {
	rows := make([]table.Row, 0, len(m.chains))
	for _, c := range m.chains {
		rows = append(rows, table.Row{c.Name, c.Color, fmt.Sprintf("%d", c.StepCount)})
	}
	m.chainTable.SetRows(rows)
}

func (m *model) refreshStepTable() {
	draft := m.ctrl.Draft()
	if draft == nil {
		m.stepTable.SetRows(nil)
		return
	}
	rows := make([]table.Row, 0, len(draft.Steps))
	for _, step := range draft.Steps {
		label := step.EntityRef.ID
		for _, n := range m.nodes {
			if n.Ref.ID == step.EntityRef.ID {
				label = n.Label
				break
			}
		}
		branch := ""
		if step.IsBranchPoint {
			branch = "Y"
		}
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", step.SequenceOrder),
			label,
			branch,
			step.MethodNotes,
		})
	}
	m.stepTable.SetRows(rows)
}

func (m *model) setError(err error) {
	m.message = err.Error()
	m.messageErr = true
}

func (m *model) setInfo(msg string) {
	m.message = msg
	m.messageErr = false
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("chainmap - attack chain editor"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	if m.ctrl.PickActive() {
		s.WriteString(contentStyle.Render(pickBannerStyle.Render(" PICK MODE: enter appends the highlighted node as the next step ")))
		s.WriteString("\n\n")
	}

	switch m.currentView {
	case topologyView:
		s.WriteString(m.renderTopology())
	case chainsView:
		s.WriteString(m.renderChains())
	case editorView:
		s.WriteString(m.renderEditor())
	}

	if m.target != inputNone {
		s.WriteString("\n\n")
		prompt := "Method notes:"
		if m.target == inputName {
			prompt = "Chain name:"
		}
		s.WriteString(contentStyle.Render(prompt + "\n" + m.input.View()))
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(contentStyle.Render(errorStyle.Render("x " + m.message)))
		} else {
			s.WriteString(contentStyle.Render(successStyle.Render("+ " + m.message)))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Topology", "Chains", "Editor"}
	var rendered []string
	for i, tab := range tabs {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(tab))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(tab))
		}
	}
	return contentStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
}

func (m model) renderTopology() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("Project %s - %d nodes", m.projectID, len(m.nodes))))
	s.WriteString("\n\n")
	s.WriteString(m.nodeTable.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("space toggles selection, enter selects (or picks a step in pick mode)"))
	return contentStyle.Render(s.String())
}

func (m model) renderChains() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(fmt.Sprintf("Attack Chains (%d)", len(m.chains))))
	s.WriteString("\n\n")
	if len(m.chains) == 0 {
		s.WriteString(helpStyle.Render("no chains yet: select nodes in Topology, then press 'n' here"))
	} else {
		s.WriteString(m.chainTable.View())
	}
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("enter opens a chain for editing, n creates one from the current selection"))
	return contentStyle.Render(s.String())
}

func (m model) renderEditor() string {
	draft := m.ctrl.Draft()
	if draft == nil {
		return contentStyle.Render(helpStyle.Render("no chain open: pick one in the Chains view"))
	}

	var s strings.Builder
	header := fmt.Sprintf("%s  %s", draft.Name, draft.Color)
	s.WriteString(headerStyle.Render(header))
	s.WriteString("\n\n")
	s.WriteString(m.stepTable.View())

	if step := m.cursorStep(); step != nil && step.IsBranchPoint && step.BranchDescription != "" {
		s.WriteString("\n\n")
		s.WriteString(branchMarkStyle.Render("branch: " + step.BranchDescription))
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("p pick step, d delete, b branch, K/J reorder, m notes, r rename, c color, s save, esc cancel"))
	return contentStyle.Render(s.String())
}

func main() {
	serverURL := os.Getenv("CHAINMAP_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}
	projectID := "default"
	if len(os.Args) > 1 {
		projectID = os.Args[1]
	}

	api := client.New(serverURL)

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := api.Health(ctx); err != nil {
		log.Fatalf("chainmap server unreachable at %s: %v", serverURL, err)
	}

	nodes, err := api.FetchTopology(ctx, projectID)
	if err != nil {
		log.Fatalf("failed to fetch topology: %v", err)
	}
	chains, err := api.FetchChainsForProject(ctx, projectID)
	if err != nil {
		log.Fatalf("failed to fetch chains: %v", err)
	}

	p := tea.NewProgram(initialModel(api, projectID, nodes, chains), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	pathpkg "path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/v2/list"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"

	"flowdis/internal/config"
	"flowdis/internal/flowdis/styles"
	"flowdis/internal/flowscript"
	"flowdis/internal/ui/colorize"
)

type viewMode int

const (
	viewListing viewMode = iota
	viewProcedures
	viewInfo
)

type procedureItem struct {
	name       string
	index      int // instruction index of the PROC
	line       int // listing line, -1 when the procedure is not in the listing
	filterTerm string
}

func (i procedureItem) Title() string       { return fmt.Sprintf("%5d  %s", i.index, i.name) }
func (i procedureItem) Description() string { return "" }
func (i procedureItem) FilterValue() string { return i.filterTerm }

// Custom item delegate for the procedure list
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(procedureItem)
	if !ok {
		return
	}

	indicator := " "
	indexStyle := styles.Dim
	if index == m.Index() {
		indicator = ">"
		indexStyle = styles.Selected
	}

	fmt.Fprintf(w, " %s  %s  %s",
		indicator,
		indexStyle.Render(fmt.Sprintf("%5d", i.index)),
		styles.Label.Render(i.name))
}

type model struct {
	viewport      viewport.Model
	procedureList list.Model
	infoView      viewport.Model
	mode          viewMode
	filepath      string
	program       *flowscript.Program
	listing       string
	warnings      []string
	noColor       bool
	width         int
	height        int
}

func NewModel(filepath string, p *flowscript.Program, listing string, warnings []string, cfg *config.Config) model {
	vp := viewport.New()
	vp.SetWidth(80)
	vp.SetHeight(24)

	info := viewport.New()
	info.SetWidth(80)
	info.SetHeight(24)

	procedureList := list.New(procedureItems(p, listing), itemDelegate{}, 80, 24)
	procedureList.SetShowStatusBar(false)
	procedureList.SetFilteringEnabled(true)
	procedureList.Title = fmt.Sprintf("Procedures (%d total)", len(p.ProcedureLabels))
	procedureList.Styles.Title = styles.Title
	procedureList.SetShowHelp(true)

	m := model{
		viewport:      vp,
		procedureList: procedureList,
		infoView:      info,
		filepath:      filepath,
		program:       p,
		listing:       listing,
		warnings:      warnings,
		noColor:       cfg.NoColor,
		width:         80,
		height:        24,
	}
	m.updateContent()
	return m
}

// procedureItems lists procedures in text order with their listing lines.
func procedureItems(p *flowscript.Program, listing string) []list.Item {
	lines := procedureLines(listing)

	labels := make([]flowscript.Label, len(p.ProcedureLabels))
	copy(labels, p.ProcedureLabels)
	sort.SliceStable(labels, func(i, j int) bool {
		return labels[i].InstructionIndex < labels[j].InstructionIndex
	})

	items := make([]list.Item, 0, len(labels))
	for _, l := range labels {
		line, ok := lines[l.Name]
		if !ok {
			line = -1
		}
		items = append(items, procedureItem{
			name:       l.Name,
			index:      l.InstructionIndex,
			line:       line,
			filterTerm: fmt.Sprintf("%d %s", l.InstructionIndex, l.Name),
		})
	}
	return items
}

// procedureLines maps each procedure name to the first listing line that
// opens it with PROC.
func procedureLines(listing string) map[string]int {
	lines := make(map[string]int)
	for n, line := range strings.Split(listing, "\n") {
		name, ok := strings.CutPrefix(line, flowscript.PROC.String()+" ")
		if !ok {
			continue
		}
		if _, seen := lines[name]; !seen {
			lines[name] = n
		}
	}
	return lines
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width != m.width || msg.Height != m.height {
			m.width = msg.Width
			m.height = msg.Height
			m.viewport.SetWidth(msg.Width)
			m.viewport.SetHeight(msg.Height - 2)
			m.procedureList.SetWidth(msg.Width)
			m.procedureList.SetHeight(msg.Height - 2)
			m.infoView.SetWidth(msg.Width)
			m.infoView.SetHeight(msg.Height - 2)

			m.updateContent()
		}

	case tea.KeyMsg:
		// While filtering, the list owns every key except quit.
		if m.mode == viewProcedures && m.procedureList.FilterState() == list.Filtering {
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
		} else {
			switch msg.String() {
			case "q", "ctrl+c":
				return m, tea.Quit
			case "l":
				m.mode = viewListing
				return m, nil
			case "p":
				m.mode = viewProcedures
				return m, nil
			case "i":
				m.mode = viewInfo
				return m, nil
			case "enter":
				if m.mode == viewProcedures {
					if item, ok := m.procedureList.SelectedItem().(procedureItem); ok && item.line >= 0 {
						m.mode = viewListing
						m.viewport.SetYOffset(item.line)
					}
				}
				return m, nil
			case "tab":
				m.mode = (m.mode + 1) % 3
				return m, nil
			case "shift+tab":
				m.mode = (m.mode + 2) % 3
				return m, nil
			}
		}
	}

	switch m.mode {
	case viewProcedures:
		m.procedureList, cmd = m.procedureList.Update(msg)
	case viewInfo:
		m.infoView, cmd = m.infoView.Update(msg)
	default:
		m.viewport, cmd = m.viewport.Update(msg)
	}
	return m, cmd
}

func (m model) View() string {
	var content, menu string
	switch m.mode {
	case viewProcedures:
		content = m.procedureList.View()
		menu = " Enter: go to procedure • L: listing • I: info • Tab: cycle • Q: quit "
	case viewInfo:
		content = m.infoView.View()
		menu = " L: listing • P: procedures • Tab: cycle • Q: quit "
	default:
		content = m.viewport.View()
		menu = " P: procedures • I: info • Tab: cycle • Q: quit "
	}

	return content + "\n" + styles.MenuBar.Width(m.width).Render(menu)
}

func (m *model) updateContent() {
	listing := m.listing
	if !m.noColor {
		if colored, err := colorize.Colorize(listing); err == nil {
			listing = colored
		}
	}
	m.viewport.SetContent(listing)

	md := m.infoMarkdown()
	if rendered, err := styles.RenderMarkdown(md, max(m.width-2, 20)); err == nil {
		md = rendered
	}
	m.infoView.SetContent(md)
}

// infoMarkdown summarizes the program and any disassembly warnings.
func (m *model) infoMarkdown() string {
	relPath := m.filepath
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := pathpkg.Rel(cwd, m.filepath); err == nil {
			relPath = rel
		}
	}

	s := flowscript.Summarize(m.program)

	var sb strings.Builder
	sb.WriteString("# Flowdis\n\n")
	fmt.Fprintf(&sb, "```flowasm\n; %s\n; %d instructions, %d procedures, %d jump labels\n; %d string bytes, %d message bytes\n```\n",
		relPath, s.Instructions, len(s.Procedures), s.JumpLabels, s.StringBytes, s.MessageBytes)

	if len(s.OpcodeHistogram) > 0 {
		names := make([]string, 0, len(s.OpcodeHistogram))
		for name := range s.OpcodeHistogram {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if s.OpcodeHistogram[names[i]] != s.OpcodeHistogram[names[j]] {
				return s.OpcodeHistogram[names[i]] > s.OpcodeHistogram[names[j]]
			}
			return names[i] < names[j]
		})

		sb.WriteString("\n## Opcodes\n\n| Mnemonic | Count |\n|---|---:|\n")
		for _, name := range names {
			fmt.Fprintf(&sb, "| `%s` | %d |\n", name, s.OpcodeHistogram[name])
		}
	}

	if len(m.warnings) > 0 {
		sb.WriteString("\n## Warnings\n\n")
		for _, w := range m.warnings {
			fmt.Fprintf(&sb, "- %s\n", w)
		}
	}

	return sb.String()
}

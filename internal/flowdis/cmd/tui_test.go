package cmd

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"flowdis/internal/config"
	"flowdis/internal/ui/colorize"
)

func TestProcedureLines(t *testing.T) {
	listing := "; header\n\n.text\nPROC main\nEND\n\nPROC helper\nEND\nPROC main\n"
	lines := procedureLines(listing)

	if got := lines["main"]; got != 3 {
		t.Errorf("main line = %d, want 3", got)
	}
	if got := lines["helper"]; got != 6 {
		t.Errorf("helper line = %d, want 6", got)
	}
	if _, ok := lines["missing"]; ok {
		t.Errorf("unexpected entry for missing procedure")
	}
}

func TestModelView(t *testing.T) {
	cfg := config.Default()
	cfg.NoColor = true

	p := sampleProgram()
	listing, err := renderListing(p, cfg, &warningLog{})
	if err != nil {
		t.Fatal(err)
	}

	m := NewModel("/tmp/sample.bf", p, listing, []string{"unplaced jump label"}, cfg)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(model)

	view := colorize.StripANSI(m.View())
	if !strings.Contains(view, "PROC main") {
		t.Errorf("listing view missing procedure:\n%s", view)
	}

	items := m.procedureList.Items()
	if len(items) != 2 {
		t.Fatalf("got %d procedures, want 2", len(items))
	}
	first := items[0].(procedureItem)
	if first.name != "main" || first.line < 0 {
		t.Errorf("unexpected first procedure %+v", first)
	}
	second := items[1].(procedureItem)
	if second.name != "helper" || second.index != 6 || second.line <= first.line {
		t.Errorf("unexpected second procedure %+v", second)
	}

	md := m.infoMarkdown()
	for _, want := range []string{"8 instructions", "2 procedures", "unplaced jump label", "`PROC`"} {
		if !strings.Contains(md, want) {
			t.Errorf("info pane missing %q:\n%s", want, md)
		}
	}
}

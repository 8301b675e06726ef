package cmd

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"flowdis/internal/config"
	"flowdis/internal/flowscript"
	"flowdis/internal/logging"
)

func sampleProgram() *flowscript.Program {
	return &flowscript.Program{
		Text: []flowscript.Instruction{
			{Opcode: flowscript.PROC, OperandShort: 0},
			{Opcode: flowscript.PUSHSTR, OperandShort: 0},
			{Opcode: flowscript.COMM, OperandShort: 1},
			{Opcode: flowscript.PUSHI},
			flowscript.IntOperand(42),
			{Opcode: flowscript.END},
			{Opcode: flowscript.PROC, OperandShort: 1},
			{Opcode: flowscript.END},
		},
		ProcedureLabels: []flowscript.Label{
			{Name: "main", InstructionIndex: 0},
			{Name: "helper", InstructionIndex: 6},
		},
		Strings:       []byte("hi\x00"),
		MessageScript: []byte{0xAB, 0x01},
	}
}

// writeSample encodes p into a .bf file under dir.
func writeSample(t *testing.T, dir, name string, p *flowscript.Program) string {
	t.Helper()
	data, err := flowscript.Encode(p, binary.LittleEndian)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func quietLogger() *logging.LoggerCloser {
	return logging.NewLoggerWithWriter(io.Discard)
}

func TestPrintListing(t *testing.T) {
	cfg := config.Default()
	lg := quietLogger()
	defer lg.Close()

	var buf bytes.Buffer
	if err := printListing(&buf, sampleProgram(), cfg, lg.Logger); err != nil {
		t.Fatal(err)
	}

	out := buf.String()
	for _, want := range []string{
		"; " + config.Default().Header,
		".text",
		"PROC main",
		`PUSHSTR "hi"`,
		"COMM 1",
		"PUSHI 42",
		"PROC helper",
		".msgdata raw",
		"AB01",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("listing to a non-terminal should not be highlighted")
	}
}

func TestWriteListing(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.Default()
	cfg.Header = "regression"

	lg := quietLogger()
	defer lg.Close()

	path := filepath.Join(tmpDir, "out.flowasm")
	if err := writeListing(path, sampleProgram(), cfg, lg.Logger); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "; regression\n") {
		t.Errorf("unexpected header: %q", string(data))
	}

	if err := writeListing(filepath.Join(tmpDir, "missing", "out.flowasm"), sampleProgram(), cfg, lg.Logger); err == nil {
		t.Errorf("expected error writing into a missing directory")
	}
}

func TestRunJSON(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := config.Default()

	good := writeSample(t, tmpDir, "good.bf", sampleProgram())

	badString := sampleProgram()
	badString.Text[1].OperandShort = 40
	stringWarning := writeSample(t, tmpDir, "string.bf", badString)

	badLabel := sampleProgram()
	badLabel.Text[6].OperandShort = 5
	labelError := writeSample(t, tmpDir, "label.bf", badLabel)

	tests := []struct {
		name         string
		path         string
		wantErr      bool
		wantError    bool
		wantWarnings int
	}{
		{name: "valid program", path: good},
		{name: "string offset out of range", path: stringWarning, wantWarnings: 1},
		{name: "procedure label out of range", path: labelError, wantError: true},
		{name: "missing file", path: filepath.Join(tmpDir, "nope.bf"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := runJSON(&buf, tt.path, cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("runJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var out JSONOutput
			if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
				t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
			}
			if len(out.Digest) != 64 {
				t.Errorf("digest = %q, want 64 hex characters", out.Digest)
			}
			if out.Summary.Instructions != 8 {
				t.Errorf("instructions = %d, want 8", out.Summary.Instructions)
			}
			if got := strings.Join(out.Summary.Procedures, ","); got != "main,helper" {
				t.Errorf("procedures = %q", got)
			}
			if (out.Error != "") != tt.wantError {
				t.Errorf("error = %q, wantError %v", out.Error, tt.wantError)
			}
			if out.Warnings == nil {
				t.Errorf("warnings should never be null")
			}
			if len(out.Warnings) != tt.wantWarnings {
				t.Errorf("got %d warnings, want %d: %v", len(out.Warnings), tt.wantWarnings, out.Warnings)
			}
		})
	}
}

func TestWarningLog(t *testing.T) {
	w := &warningLog{}
	w.Warn("unplaced jump label", "label", "_3", "index", 9)
	w.Warn("plain")

	want := []string{"unplaced jump label label=_3 index=9", "plain"}
	if len(w.lines) != len(want) {
		t.Fatalf("got %d lines, want %d", len(w.lines), len(want))
	}
	for i := range want {
		if w.lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, w.lines[i], want[i])
		}
	}
}

func TestFileDigest(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	got, err := fileDigest(path)
	if err != nil {
		t.Fatal(err)
	}
	const emptySHA256 = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != emptySHA256 {
		t.Errorf("fileDigest() = %s, want %s", got, emptySHA256)
	}

	if _, err := fileDigest(filepath.Join(tmpDir, "missing")); err == nil {
		t.Errorf("expected error for missing file")
	}
}

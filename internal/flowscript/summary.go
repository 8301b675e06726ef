package flowscript

import "sort"

// Summary describes a program without disassembling it.
type Summary struct {
	Instructions    int            `json:"instructions"`
	JumpLabels      int            `json:"jump_labels"`
	Procedures      []string       `json:"procedures"`
	StringBytes     int            `json:"string_bytes"`
	MessageBytes    int            `json:"message_bytes"`
	OpcodeHistogram map[string]int `json:"opcodes"`
}

// Summarize counts the program's tables and the opcodes reached by a linear
// walk. Companion slots of extended opcodes are not counted, and the walk
// stops at the first unknown opcode.
func Summarize(p *Program) Summary {
	s := Summary{
		Instructions:    len(p.Text),
		JumpLabels:      len(p.JumpLabels),
		Procedures:      make([]string, 0, len(p.ProcedureLabels)),
		StringBytes:     len(p.Strings),
		MessageBytes:    len(p.MessageScript),
		OpcodeHistogram: make(map[string]int),
	}

	procs := make([]Label, len(p.ProcedureLabels))
	copy(procs, p.ProcedureLabels)
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].InstructionIndex < procs[j].InstructionIndex
	})
	for _, l := range procs {
		s.Procedures = append(s.Procedures, l.Name)
	}

	for i := 0; i < len(p.Text); {
		op := p.Text[i].Opcode
		if !op.Valid() {
			break
		}
		s.OpcodeHistogram[op.String()]++
		if op.Extended() {
			i += 2
		} else {
			i++
		}
	}

	return s
}

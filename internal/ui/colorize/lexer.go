package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// FlowAsm tokenizes disassembly listings. The first word of an instruction
// line is the mnemonic and everything after it is lexed as operands, so label
// operands stay NameLabel whatever their case. The .msgdata payload is lexed
// as hex.
var FlowAsm = lexers.Register(chroma.MustNewLexer(
	&chroma.Config{
		Name:      "FlowScript Assembly",
		Aliases:   []string{"flowasm"},
		Filenames: []string{"*.flowasm"},
		MimeTypes: []string{"text/x-flowasm"},
	},
	flowAsmRules,
))

func flowAsmRules() chroma.Rules {
	return chroma.Rules{
		"root": {
			{Pattern: `\n`, Type: chroma.Text},
			{Pattern: `[ \t]+`, Type: chroma.TextWhitespace},
			{Pattern: `;[^\n]*`, Type: chroma.Comment},
			{Pattern: `\.msgdata[^\n]*`, Type: chroma.CommentPreproc, Mutator: chroma.Push("msgdata")},
			{Pattern: `\.[a-z]+[^\n]*`, Type: chroma.CommentPreproc},
			{Pattern: `[A-Za-z_.$@][\w.$@]*:`, Type: chroma.NameLabel},
			{Pattern: `[A-Z]+\b`, Type: chroma.Keyword, Mutator: chroma.Push("operand")},
			{Pattern: `.`, Type: chroma.Text},
		},
		"operand": {
			{Pattern: `\n`, Type: chroma.Text, Mutator: chroma.Pop(1)},
			{Pattern: `[ \t]+`, Type: chroma.TextWhitespace},
			{Pattern: `"[^"\n]*"`, Type: chroma.LiteralString},
			{Pattern: `(?:-?\d+\.\d+|NaN|-?Infinity)f`, Type: chroma.LiteralNumberFloat},
			{Pattern: `-?\d+\b`, Type: chroma.LiteralNumberInteger},
			{Pattern: `<[^>\n]*>`, Type: chroma.Error},
			{Pattern: `[\w.$@]+`, Type: chroma.NameLabel},
			{Pattern: `.`, Type: chroma.Text},
		},
		"msgdata": {
			{Pattern: `[0-9A-Fa-f]+`, Type: chroma.LiteralNumberHex},
			{Pattern: `\s+`, Type: chroma.Text},
			{Pattern: `.`, Type: chroma.Error},
		},
	}
}

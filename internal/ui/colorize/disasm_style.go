package colorize

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// FlowAsmDark colours FlowAsm tokens on dark terminals.
var FlowAsmDark = styles.Register(chroma.MustNewStyle("flowasm-dark", chroma.StyleEntries{
	chroma.Text:           "#FFFFFF",
	chroma.Background:     "bg:#1e1e1e",
	chroma.Comment:        "#6A9955",
	chroma.CommentPreproc: "#C586C0",

	chroma.Keyword:   "#FFFFFF",
	chroma.NameLabel: "#FFD700",

	chroma.LiteralNumber:        "#FF5F87",
	chroma.LiteralNumberHex:     "#7C9C9D",
	chroma.LiteralNumberInteger: "#FF5F87",
	chroma.LiteralNumberFloat:   "#FF5F87",

	chroma.String: "#EACD53",
	chroma.Error:  "bold #F44747",
}))

package languages

import "github.com/morozRed/architect/internal/parser"

// NewDefaultFrontend creates a frontend with all supported language parsers
func NewDefaultFrontend() *parser.Frontend {
	f := parser.NewFrontend()

	f.Register(NewCppParser())

	return f
}

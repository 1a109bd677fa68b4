package languages

import (
	"context"

	"github.com/morozRed/architect/internal/parser"
	"github.com/morozRed/architect/internal/registry"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// CppParser implements parsing for C and C++ source files. The C++ grammar
// is a superset that also accepts the C code found in mixed projects.
type CppParser struct{}

// NewCppParser creates a new C/C++ parser
func NewCppParser() *CppParser {
	return &CppParser{}
}

func (c *CppParser) Language() string {
	return "cpp"
}

func (c *CppParser) Extensions() []string {
	return []string{".c", ".h", ".cc", ".cpp", ".cxx", ".c++", ".hh", ".hpp", ".hxx", ".h++", ".inl", ".ipp"}
}

// Parse builds the syntax tree. A tree-sitter parser is not safe for
// concurrent use, so each call gets its own.
func (c *CppParser) Parse(ctx context.Context, path string, content []byte) (parser.SourceUnit, error) {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	return &cppUnit{
		path:      path,
		content:   content,
		tree:      tree,
		anonymous: make(map[registry.NamespaceID]registry.NamespaceID),
	}, nil
}

// cppUnit is one parsed C/C++ file.
type cppUnit struct {
	path    string
	content []byte
	tree    *sitter.Tree

	// anonymous namespaces are distinct per file; keyed by parent so the
	// link pass finds the ones the declare pass created.
	anonymous map[registry.NamespaceID]registry.NamespaceID
}

func (u *cppUnit) Path() string {
	return u.path
}

func (u *cppUnit) HasSyntaxErrors() bool {
	return u.tree.RootNode().HasError()
}

func (u *cppUnit) Declare(s *parser.Session) {
	w := &walker{unit: u, session: s, reg: s.Registry}
	w.visitChildren(u.tree.RootNode(), rootContext())
}

func (u *cppUnit) Link(s *parser.Session) {
	w := &walker{unit: u, session: s, reg: s.Registry, linking: true}
	w.visitChildren(u.tree.RootNode(), rootContext())
}

func (u *cppUnit) Close() {
	u.tree.Close()
}

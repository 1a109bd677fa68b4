package output

import (
	"io"
	"strings"

	"github.com/morozRed/architect/internal/errors"
	"github.com/morozRed/architect/internal/graph"
	"github.com/morozRed/architect/internal/registry"
)

// Format names a registry representation. FormatSource is input only;
// the others can be read (json) or written.
type Format string

const (
	FormatDefault Format = ""
	FormatSource  Format = "cpp"
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
	FormatDot     Format = "dot"
)

var formatAliases = map[string]Format{
	"":         FormatDefault,
	"default":  FormatDefault,
	"cpp":      FormatSource,
	"c++":      FormatSource,
	"clang":    FormatSource,
	"source":   FormatSource,
	"json":     FormatJSON,
	"console":  FormatConsole,
	"text":     FormatConsole,
	"dot":      FormatDot,
	"graphviz": FormatDot,
}

func ParseFormat(value string) (Format, error) {
	format, ok := formatAliases[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return "", errors.Newf(errors.UnsupportedFormat, "unsupported format %q (supported: cpp, json, console, dot)", value)
	}
	return format, nil
}

// InputOrDefault resolves the default input format.
func (f Format) InputOrDefault() Format {
	if f == FormatDefault {
		return FormatSource
	}
	return f
}

// OutputOrDefault resolves the default output format.
func (f Format) OutputOrDefault() Format {
	if f == FormatDefault {
		return FormatConsole
	}
	return f
}

// Options tune the renderers that support them.
type Options struct {
	Pretty         bool
	ReferenceCount bool
}

// Renderer writes a registry or a cluster set without modifying it.
type Renderer interface {
	Symbols(w io.Writer, r *registry.Registry) error
	Clusters(w io.Writer, r *registry.Registry, clusters []graph.Cluster) error
}

func NewRenderer(format Format, opts Options) (Renderer, error) {
	switch format.OutputOrDefault() {
	case FormatConsole:
		return consoleRenderer{}, nil
	case FormatDot:
		return dotRenderer{opts: opts}, nil
	case FormatJSON:
		return jsonRenderer{opts: opts}, nil
	default:
		return nil, errors.Newf(errors.UnsupportedFormat, "format %q cannot be used for output", format)
	}
}

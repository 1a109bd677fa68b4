package document

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/morozRed/architect/internal/errors"
	"github.com/morozRed/architect/internal/registry"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads the document at path into r. Compressed documents are
// recognised by their .gz or .zst suffix.
func Load(r *registry.Registry, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.InputUnreadable, err, "cannot open document").WithPath(path)
	}
	defer f.Close()

	rd, err := decompress(f, path)
	if err != nil {
		return errors.Wrap(errors.ParseFailure, err, "cannot decompress document").WithPath(path)
	}
	defer rd.Close()

	if err := Decode(r, rd); err != nil {
		var coded *errors.Error
		if stderrors.As(err, &coded) && coded.Path == "" {
			coded.Path = path
		}
		return err
	}
	return nil
}

// Decode parses one document and adds its symbols to r. Reference ids are
// positions within the document; they are shifted past the symbols already
// in r, so several documents can share one registry. Nothing is added when
// the document is rejected.
func Decode(r *registry.Registry, rd io.Reader) error {
	var doc []Symbol
	if err := json.NewDecoder(rd).Decode(&doc); err != nil {
		return classifyDecodeError(err)
	}
	if err := check(doc); err != nil {
		return err
	}

	base := registry.SymbolID(r.Len())
	for i, entry := range doc {
		sym := r.CreateSymbol(symbolTypesByName[*entry.Type], *entry.Defined)
		sym.Identifier = registry.SymbolIdentifier{Name: *entry.Identifier.Name, Type: *entry.Identifier.Type}
		if len(entry.TemplateParameters) > 0 {
			sym.TemplateParameters = append([]string(nil), entry.TemplateParameters...)
		}

		ns := registry.RootNamespace
		for _, name := range entry.Namespaces {
			next, err := r.EnsureNamespace(ns, name)
			if err != nil {
				return errors.Wrap(errors.ParseFailure, err, fmt.Sprintf("symbol %d: cannot build namespace", i))
			}
			ns = next
		}
		if err := r.AttachSymbol(sym.ID, ns); err != nil {
			return errors.Wrap(errors.ParseFailure, err, fmt.Sprintf("symbol %d", i))
		}
	}

	for i, entry := range doc {
		from := base + registry.SymbolID(i)
		for _, edge := range *entry.References {
			to := base + registry.SymbolID(*edge.ID)
			for _, ref := range *edge.References {
				_, err := r.AddReference(from, to, registry.Reference{
					Location: registry.Location{Filename: *ref.Filename, Line: *ref.Line, Column: *ref.Column},
					Type:     referenceTypesByName[*ref.Type],
				})
				if err != nil {
					return errors.Wrap(errors.ParseFailure, err, fmt.Sprintf("symbol %d", i))
				}
			}
		}
	}
	return nil
}

// check validates the shape of every entry and the range of every
// reference id before anything is written to the registry.
func check(doc []Symbol) error {
	for i := range doc {
		if err := validate.Struct(&doc[i]); err != nil {
			return schemaError(i, err)
		}
		for _, edge := range *doc[i].References {
			if int(*edge.ID) >= len(doc) {
				return errors.Newf(errors.SchemaError, "symbol %d: reference id %d out of range (document has %d symbols)", i, *edge.ID, len(doc))
			}
		}
	}
	return nil
}

func schemaError(index int, err error) error {
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(errors.SchemaError, err, fmt.Sprintf("symbol %d", index))
	}
	fe := fieldErrs[0]
	field := fe.Namespace()
	if dot := strings.Index(field, "."); dot >= 0 {
		field = field[dot+1:]
	}
	switch fe.Tag() {
	case "required":
		return errors.Newf(errors.SchemaError, "symbol %d: missing field %q", index, field)
	case "oneof":
		return errors.Newf(errors.SchemaError, "symbol %d: field %q has unknown value %v", index, field, fe.Value())
	default:
		return errors.Newf(errors.SchemaError, "symbol %d: field %q failed %q", index, field, fe.Tag())
	}
}

func classifyDecodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	if stderrors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "document"
		}
		return errors.Wrap(errors.SchemaError, err, fmt.Sprintf("field %q must be %s, got %s", field, describeKind(typeErr.Type), typeErr.Value))
	}
	return errors.Wrap(errors.ParseFailure, err, "malformed JSON document")
}

func describeKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice:
		return "an array"
	case reflect.Struct:
		return "an object"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Uint32:
		return "an unsigned integer"
	default:
		return t.Kind().String()
	}
}

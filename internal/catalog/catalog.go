// Package catalog loads table metadata from CUE definitions and turns
// it into headers for leaf relvar nodes.
//
// A catalog is a directory of .cue files declaring tables:
//
//	table: products: {
//		source:  "shop.products"
//		comment: "product master data"
//		attr: {
//			id:    {type: "numeric", key: true}
//			name:  {type: "string", comment: "display name"}
//			image: {type: "blob", nullable: true}
//		}
//	}
//
// Attribute order in the file becomes header order. Every table must
// declare at least one key attribute; headers propagate that key through
// every transform.
package catalog

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/relq/internal/header"
	"github.com/roach88/relq/internal/rel"
)

// Catalog holds the loaded tables, addressable by catalog name and
// iterable in load order.
type Catalog struct {
	tables map[string]*rel.Table
	names  []string
}

// Names returns table names in load order.
func (c *Catalog) Names() []string {
	return c.names
}

// Table returns the named table's metadata.
func (c *Catalog) Table(name string) (*rel.Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// CompileTable parses one CUE table struct into table metadata.
//
// The CUE value should be the table struct itself, looked up from the
// catalog root, e.g. value.LookupPath(cue.ParsePath("table.products")).
func CompileTable(v cue.Value) (*rel.Table, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	t := &rel.Table{}

	// Table name comes from the struct label.
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		t.Name = labels[len(labels)-1].String()
	}

	// source is optional and defaults to the table name.
	sourceVal := v.LookupPath(cue.ParsePath("source"))
	if sourceVal.Exists() {
		source, err := sourceVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		t.Qualified = source
	} else {
		t.Qualified = t.Name
	}

	commentVal := v.LookupPath(cue.ParsePath("comment"))
	if commentVal.Exists() {
		comment, err := commentVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		t.Comment = comment
	}

	h, err := parseAttributes(v)
	if err != nil {
		return nil, err
	}
	if len(h) == 0 {
		return nil, &CompileError{
			Field:   fmt.Sprintf("table.%s.attr", t.Name),
			Message: "at least one attribute is required",
			Pos:     v.Pos(),
		}
	}
	if len(h.PrimaryKey()) == 0 {
		return nil, &CompileError{
			Field:   fmt.Sprintf("table.%s.attr", t.Name),
			Message: "at least one key attribute is required",
			Pos:     v.Pos(),
		}
	}
	t.Header = h

	return t, nil
}

// parseAttributes extracts the attribute list in declaration order.
func parseAttributes(v cue.Value) (header.Header, error) {
	var h header.Header

	attrVal := v.LookupPath(cue.ParsePath("attr"))
	if !attrVal.Exists() {
		return h, nil
	}

	iter, err := attrVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		attr := header.Attribute{Name: iter.Label()}
		av := iter.Value()

		typeVal := av.LookupPath(cue.ParsePath("type"))
		if !typeVal.Exists() {
			return nil, &CompileError{
				Field:   "attr." + attr.Name,
				Message: "attribute type is required",
				Pos:     av.Pos(),
			}
		}
		typeName, err := typeVal.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		attr.Type, err = parseType(typeName, av)
		if err != nil {
			return nil, err
		}

		if keyVal := av.LookupPath(cue.ParsePath("key")); keyVal.Exists() {
			if attr.Key, err = keyVal.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if nullVal := av.LookupPath(cue.ParsePath("nullable")); nullVal.Exists() {
			if attr.Nullable, err = nullVal.Bool(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if defVal := av.LookupPath(cue.ParsePath("default")); defVal.Exists() {
			if attr.Default, err = defVal.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}
		if comVal := av.LookupPath(cue.ParsePath("comment")); comVal.Exists() {
			if attr.Comment, err = comVal.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}

		if attr.Key && attr.Type == header.TypeBlob {
			return nil, &CompileError{
				Field:   "attr." + attr.Name,
				Message: "blob attributes cannot be key attributes",
				Pos:     av.Pos(),
			}
		}

		h = append(h, attr)
	}

	return h, nil
}

// parseType maps the declared type tag onto the header type classes.
func parseType(name string, v cue.Value) (header.Type, error) {
	switch name {
	case "string":
		return header.TypeString, nil
	case "numeric":
		return header.TypeNumeric, nil
	case "blob":
		return header.TypeBlob, nil
	case "other":
		return header.TypeOther, nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported attribute type %q (want string, numeric, blob or other)", name),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a catalog compilation error with source
// position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

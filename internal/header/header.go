// Package header implements the attribute algebra for relvar schemas.
//
// A Header is the ordered attribute list of a relvar at one point in an
// operator tree. Operators derive new headers via Project and Join; the
// compiler materializes pending aliases with StripAliases after wrapping
// a fragment in a named subquery.
package header

import (
	"regexp"
	"strings"
)

// Type tags the SQL type class of an attribute. The compiler only
// distinguishes the classes that change its behavior: strings get quoted
// in literals, blobs are excluded from join keys and restrictions, and
// everything else passes through.
type Type string

const (
	TypeString  Type = "string"
	TypeNumeric Type = "numeric"
	TypeBlob    Type = "blob"
	TypeOther   Type = "other"
)

// Attribute describes one column of a relvar.
//
// An attribute with a non-empty Alias is unresolved: it carries a pending
// rename or compute target name and must be materialized through a
// subquery wrap before it can appear in a WHERE-clause field reference.
type Attribute struct {
	// Name is the source column name, or the compute expression when
	// Computed is true.
	Name string

	// Type is the SQL type class.
	Type Type

	// Key marks primary-key membership. Key attributes survive every
	// projection.
	Key bool

	// Nullable reports whether the column admits NULL.
	Nullable bool

	// Default is the column's default literal, empty when absent.
	Default string

	// Comment is free-text column documentation from the catalog.
	Comment string

	// Alias is the pending rename/compute target name. Empty once
	// resolved.
	Alias string

	// Computed marks attributes whose Name holds an expression rather
	// than a column identifier. Expressions are never backquoted.
	Computed bool
}

// Resolved reports whether the attribute has no pending alias.
func (a Attribute) Resolved() bool { return a.Alias == "" }

// OutName is the name the attribute exposes to consumers: the pending
// alias when one is set, the column name otherwise.
func (a Attribute) OutName() string {
	if a.Alias != "" {
		return a.Alias
	}
	return a.Name
}

// Header is an ordered attribute sequence. Order matters for select-list
// rendering and display, not for join/restriction semantics.
type Header []Attribute

// Clone returns an independent copy of the header.
func (h Header) Clone() Header {
	out := make(Header, len(h))
	copy(out, h)
	return out
}

// Index returns the position of the attribute with the given column
// name, or -1 when absent.
func (h Header) Index(name string) int {
	for i, a := range h {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Names returns all column names in header order.
func (h Header) Names() []string {
	out := make([]string, len(h))
	for i, a := range h {
		out[i] = a.Name
	}
	return out
}

// PrimaryKey returns the names of key attributes in header order.
func (h Header) PrimaryKey() []string {
	var out []string
	for _, a := range h {
		if a.Key {
			out = append(out, a.Name)
		}
	}
	return out
}

// DependentFields returns the names of non-key attributes.
func (h Header) DependentFields() []string {
	var out []string
	for _, a := range h {
		if !a.Key {
			out = append(out, a.Name)
		}
	}
	return out
}

// BlobNames returns the names of blob attributes.
func (h Header) BlobNames() []string {
	var out []string
	for _, a := range h {
		if a.Type == TypeBlob {
			out = append(out, a.Name)
		}
	}
	return out
}

// NotBlobs returns the names of all non-blob attributes.
func (h Header) NotBlobs() []string {
	var out []string
	for _, a := range h {
		if a.Type != TypeBlob {
			out = append(out, a.Name)
		}
	}
	return out
}

// HasAliases reports whether any attribute is unresolved.
func (h Header) HasAliases() bool {
	for _, a := range h {
		if a.Alias != "" {
			return true
		}
	}
	return false
}

// StripAliases resolves every pending alias: the alias becomes the base
// column name, as exposed by the subquery wrap that was just emitted.
// Only meaningful immediately after such a wrap.
func (h Header) StripAliases() Header {
	out := h.Clone()
	for i := range out {
		if out[i].Alias != "" {
			out[i].Name = out[i].Alias
			out[i].Alias = ""
			out[i].Computed = false
		}
	}
	return out
}

// identPattern matches a bare SQL identifier. A projection spec whose
// left side matches is a rename and must resolve against the source
// header; anything else is treated as a compute expression.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type specKind int

const (
	specPlain specKind = iota
	specWildcard
	specRename
	specCompute
)

type parsedSpec struct {
	kind specKind
	src  string // column name or compute expression
	dst  string // rename/compute target
}

// parseSpec splits one attribute specifier: `name`, `*`, `old->new` or
// `expr->new`.
func parseSpec(s string) parsedSpec {
	if s == "*" {
		return parsedSpec{kind: specWildcard}
	}
	if i := strings.LastIndex(s, "->"); i >= 0 {
		src := strings.TrimSpace(s[:i])
		dst := strings.TrimSpace(s[i+2:])
		if identPattern.MatchString(src) {
			return parsedSpec{kind: specRename, src: src, dst: dst}
		}
		return parsedSpec{kind: specCompute, src: src, dst: dst}
	}
	return parsedSpec{kind: specPlain, src: strings.TrimSpace(s)}
}

// Project derives a new header from attribute specifiers.
//
// The wildcard expands to every attribute not already claimed by a
// rename or compute spec; combining a plain spec with the wildcard
// fails as a duplicate. Renames keep the attribute's identity and type
// and set its alias;
// computes introduce a fresh unresolved attribute of opaque type. Key
// attributes are always carried through, listed or not; an empty spec
// list therefore yields exactly the primary key.
func (h Header) Project(specs []string) (Header, error) {
	parsed := make([]parsedSpec, len(specs))
	for i, s := range specs {
		parsed[i] = parseSpec(s)
	}

	// Column names claimed by rename and compute specs; the wildcard
	// skips these so a rename does not also surface its source column.
	// Plain specs do not shrink the wildcard, so a column listed both
	// ways fails below as a duplicate.
	claimed := map[string]bool{}
	for _, p := range parsed {
		switch p.kind {
		case specRename:
			claimed[p.src] = true
		case specCompute:
			claimed[p.dst] = true
		}
	}

	var out Header
	for _, p := range parsed {
		switch p.kind {
		case specWildcard:
			for _, a := range h {
				if !claimed[a.Name] {
					out = append(out, a)
				}
			}
		case specPlain:
			i := h.Index(p.src)
			if i < 0 {
				return nil, newError(ErrCodeUnknownAttribute, p.src, "attribute not in header")
			}
			out = append(out, h[i])
		case specRename:
			i := h.Index(p.src)
			if i < 0 {
				return nil, newError(ErrCodeUnknownAttribute, p.src, "rename source not in header")
			}
			a := h[i]
			a.Alias = p.dst
			out = append(out, a)
		case specCompute:
			out = append(out, Attribute{
				Name:     p.src,
				Type:     TypeOther,
				Alias:    p.dst,
				Computed: true,
			})
		}
	}

	// Key attributes can never be projected away.
	for _, a := range h {
		if !a.Key {
			continue
		}
		found := false
		for _, o := range out {
			if !o.Computed && o.Name == a.Name {
				found = true
				break
			}
		}
		if !found {
			out = append(out, a)
		}
	}

	seen := map[string]bool{}
	for _, a := range out {
		n := a.OutName()
		if seen[n] {
			return nil, newError(ErrCodeDuplicateAttribute, n, "attribute named twice in projection")
		}
		seen[n] = true
	}
	return out, nil
}

// Join unifies two headers for a natural join. Attributes present by
// name in both inputs become the match columns: their types must agree
// and none may be a blob. The result's primary key is the union of both
// inputs' primary keys; everything else from both sides carries through.
func Join(h1, h2 Header) (Header, error) {
	out := h1.Clone()
	for _, b := range h2 {
		i := out.Index(b.Name)
		if i < 0 {
			out = append(out, b)
			continue
		}
		a := out[i]
		if a.Type == TypeBlob || b.Type == TypeBlob {
			return nil, newError(ErrCodeBlobJoinKey, b.Name, "blob attribute used as join key")
		}
		if !compatible(a.Type, b.Type) {
			return nil, newError(ErrCodeTypeMismatch, b.Name,
				"join attribute has type "+string(a.Type)+" on one side and "+string(b.Type)+" on the other")
		}
		a.Key = a.Key || b.Key
		a.Nullable = a.Nullable && b.Nullable
		out[i] = a
	}
	return out, nil
}

// compatible reports whether two type tags can unify in a join. Opaque
// attributes unify with anything.
func compatible(a, b Type) bool {
	return a == b || a == TypeOther || b == TypeOther
}

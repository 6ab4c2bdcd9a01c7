// Package columns holds the structured column descriptors produced by the
// resolver and renders them into the comma-joined select-list text the SQL
// assembler consumes.
package columns

import "strings"

// Kind tags the variant held by a Column.
type Kind int

const (
	// KindDirect is a pass-through reference: "<table>.<column>".
	KindDirect Kind = iota
	// KindRenamed reads a source column under an alias: "<table>.<src> AS <alias>".
	KindRenamed
	// KindPlaceholder is a typed NULL: "CAST (NULL AS <type>) AS <alias>".
	KindPlaceholder
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindRenamed:
		return "renamed"
	case KindPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// Column is one entry of a select list.
type Column struct {
	Kind Kind
	// Table is the bracket-quoted source table. Empty for placeholders.
	Table string
	// Source is the physical source column. Empty for placeholders.
	Source string
	// Alias is the output column name.
	Alias string
	// Type is the SQL type of a placeholder.
	Type string
}

// Direct returns a pass-through column whose alias is its own name.
func Direct(table, column string) Column {
	column = strings.TrimSpace(column)
	return Column{Kind: KindDirect, Table: table, Source: column, Alias: column}
}

// Renamed returns a column read from source and exposed as alias.
func Renamed(table, source, alias string) Column {
	return Column{
		Kind:   KindRenamed,
		Table:  table,
		Source: strings.TrimSpace(source),
		Alias:  strings.TrimSpace(alias),
	}
}

// Placeholder returns a typed NULL exposed as alias.
func Placeholder(typ, alias string) Column {
	return Column{Kind: KindPlaceholder, Type: typ, Alias: strings.TrimSpace(alias)}
}

// IsPlaceholder reports whether c is a typed NULL.
func (c Column) IsPlaceholder() bool { return c.Kind == KindPlaceholder }

// String renders the select-list expression for c.
func (c Column) String() string {
	switch c.Kind {
	case KindPlaceholder:
		return "CAST (NULL AS " + c.Type + ") AS " + c.Alias
	case KindRenamed:
		return c.Table + "." + c.Source + " AS " + c.Alias
	default:
		return c.Table + "." + c.Source
	}
}

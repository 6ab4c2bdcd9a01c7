package columns

import "strings"

// Pending replaces an earlier placeholder once the list is finalized.
type Pending struct {
	// Alias selects the placeholder to replace.
	Alias string
	// Before bounds the search to entries appended before the pending was
	// recorded.
	Before int
	// Column is the replacement.
	Column Column
}

// List accumulates the columns of one select list.
// The zero value is ready to use.
type List struct {
	cols    []Column
	pending []Pending
}

// Append adds c to the end of the list.
func (l *List) Append(c Column) {
	l.cols = append(l.cols, c)
}

// AppendDirect adds a pass-through column.
func (l *List) AppendDirect(table, column string) {
	l.Append(Direct(table, column))
}

// AppendRenamed adds a source column exposed under alias.
func (l *List) AppendRenamed(table, source, alias string) {
	l.Append(Renamed(table, source, alias))
}

// AppendPlaceholder adds a typed NULL exposed under alias.
func (l *List) AppendPlaceholder(typ, alias string) {
	l.Append(Placeholder(typ, alias))
}

// Defer records that the placeholder named alias, if one was already
// appended, must become c.
func (l *List) Defer(alias string, c Column) {
	l.pending = append(l.pending, Pending{
		Alias:  strings.TrimSpace(alias),
		Before: len(l.cols),
		Column: c,
	})
}

// Finalize applies every pending replacement in the order recorded and
// returns how many entries were rewritten. Pendings without a matching
// placeholder are dropped.
func (l *List) Finalize() int {
	patched := 0
	for _, p := range l.pending {
		limit := min(p.Before, len(l.cols))
		for i := 0; i < limit; i++ {
			if l.cols[i].IsPlaceholder() && l.cols[i].Alias == p.Alias {
				l.cols[i] = p.Column
				patched++
			}
		}
	}
	l.pending = nil
	return patched
}

// Len returns the number of columns.
func (l *List) Len() int { return len(l.cols) }

// Columns returns a copy of the columns in order.
func (l *List) Columns() []Column {
	out := make([]Column, len(l.cols))
	copy(out, l.cols)
	return out
}

// Aliases returns the output names in order.
func (l *List) Aliases() []string {
	out := make([]string, len(l.cols))
	for i, c := range l.cols {
		out[i] = c.Alias
	}
	return out
}

// String renders the list comma-joined without a trailing comma.
func (l *List) String() string {
	parts := make([]string, len(l.cols))
	for i, c := range l.cols {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

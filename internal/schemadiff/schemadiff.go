// Package schemadiff performs a structural comparison of two column lists --
// "before" and "after" -- reporting which columns were added, removed, or
// changed type. Name comparisons are case-sensitive and exact; this is a
// compatibility report, not a type-theoretic decision, so a type change is
// any difference in the column's core.DataType.
package schemadiff

import (
	"fmt"
	"sort"
	"strings"

	"tablediff/internal/core"
)

// TypeChange records that a common column's type differs between "before"
// and "after".
type TypeChange struct {
	Before core.DataType
	After  core.DataType
}

// Diff is the immutable result of comparing two schemas.
type Diff struct {
	Added       map[string]core.DataType
	Removed     map[string]core.DataType
	TypeChanges map[string]TypeChange
}

// IsIdentical holds iff Added, Removed and TypeChanges are all empty.
func (d *Diff) IsIdentical() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.TypeChanges) == 0
}

// Compare builds a Diff from two ordered column lists.
func Compare(before, after []core.Column) *Diff {
	beforeByName := make(map[string]core.DataType, len(before))
	for _, c := range before {
		beforeByName[c.Name] = c.Type
	}
	afterByName := make(map[string]core.DataType, len(after))
	for _, c := range after {
		afterByName[c.Name] = c.Type
	}

	d := &Diff{
		Added:       map[string]core.DataType{},
		Removed:     map[string]core.DataType{},
		TypeChanges: map[string]TypeChange{},
	}

	for name, t := range afterByName {
		if _, ok := beforeByName[name]; !ok {
			d.Added[name] = t
		}
	}
	for name, t := range beforeByName {
		if _, ok := afterByName[name]; !ok {
			d.Removed[name] = t
		}
	}
	for name, bt := range beforeByName {
		at, ok := afterByName[name]
		if !ok {
			continue
		}
		if at != bt {
			d.TypeChanges[name] = TypeChange{Before: bt, After: at}
		}
	}

	return d
}

// String renders a human-readable summary with "Added columns",
// "Removed columns" and "Type changes" sections, each sorted by name.
func (d *Diff) String() string {
	if d.IsIdentical() {
		return "No schema differences detected."
	}

	var sb strings.Builder
	if len(d.Added) > 0 {
		sb.WriteString("Added columns:\n")
		for _, name := range sortedKeys(d.Added) {
			fmt.Fprintf(&sb, "  - %s: %s\n", name, d.Added[name])
		}
	}
	if len(d.Removed) > 0 {
		sb.WriteString("Removed columns:\n")
		for _, name := range sortedKeys(d.Removed) {
			fmt.Fprintf(&sb, "  - %s: %s\n", name, d.Removed[name])
		}
	}
	if len(d.TypeChanges) > 0 {
		sb.WriteString("Type changes:\n")
		for _, name := range sortedTypeChangeKeys(d.TypeChanges) {
			tc := d.TypeChanges[name]
			fmt.Fprintf(&sb, "  - %s: %s -> %s\n", name, tc.Before, tc.After)
		}
	}
	return sb.String()
}

func sortedKeys(m map[string]core.DataType) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTypeChangeKeys(m map[string]TypeChange) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

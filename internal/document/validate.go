// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package document

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError collects every structural problem found in a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document: %s", strings.Join(e.Problems, "; "))
}

// Validate checks a document for structural problems: duplicate ids,
// dangling extends targets, bad weights, alias collisions, empty tables.
func Validate(doc *Document) error {
	var probs []string
	addf := func(format string, args ...any) {
		probs = append(probs, fmt.Sprintf(format, args...))
	}

	seenCols := map[string]bool{}
	for _, col := range doc.Collections {
		if col.ID == "" {
			addf("collection with empty id")
			continue
		}
		if seenCols[col.ID] {
			addf("duplicate collection id %q", col.ID)
		}
		seenCols[col.ID] = true

		seenAliases := map[string]bool{}
		for _, imp := range col.Imports {
			if imp.Collection == "" {
				addf("%s: import with empty collection", col.ID)
			}
			if imp.Alias != "" {
				if seenAliases[imp.Alias] {
					addf("%s: duplicate import alias %q", col.ID, imp.Alias)
				}
				seenAliases[imp.Alias] = true
			}
		}

		seenIDs := map[string]bool{}
		for _, tbl := range col.Tables {
			if tbl.ID == "" {
				addf("%s: table with empty id", col.ID)
				continue
			}
			if seenIDs[tbl.ID] {
				addf("%s: duplicate id %q", col.ID, tbl.ID)
			}
			seenIDs[tbl.ID] = true
			if len(tbl.Entries) == 0 && tbl.Extends == "" {
				addf("%s.%s: table has no entries", col.ID, tbl.ID)
			}
			for i, e := range tbl.Entries {
				if e.Weight < 0 {
					addf("%s.%s entry %d: negative weight %d", col.ID, tbl.ID, i, e.Weight)
				}
			}
		}
		for _, tpl := range col.Templates {
			if tpl.ID == "" {
				addf("%s: template with empty id", col.ID)
				continue
			}
			if seenIDs[tpl.ID] {
				addf("%s: duplicate id %q", col.ID, tpl.ID)
			}
			seenIDs[tpl.ID] = true
			if tpl.Pattern == "" {
				addf("%s.%s: template has empty pattern", col.ID, tpl.ID)
			}
		}
	}

	// Cross-checks need the full collection set.
	for _, col := range doc.Collections {
		for _, imp := range col.Imports {
			if imp.Collection != "" && doc.Collection(imp.Collection) == nil {
				addf("%s: import of unknown collection %q", col.ID, imp.Collection)
			}
		}
		for _, tbl := range col.Tables {
			if tbl.Extends == "" {
				continue
			}
			if col.TableByID(tbl.Extends) == nil {
				addf("%s.%s: extends unknown table %q", col.ID, tbl.ID, tbl.Extends)
			}
		}
	}

	// Reject inheritance cycles; merging would never terminate.
	for _, col := range doc.Collections {
		for _, tbl := range col.Tables {
			if err := checkExtendsCycle(col, tbl); err != nil {
				addf("%s: %v", col.ID, err)
			}
		}
	}

	if len(probs) > 0 {
		return &ValidationError{Problems: probs}
	}
	return nil
}

var errExtendsCycle = errors.New("extends cycle")

func checkExtendsCycle(col *Collection, tbl *Table) error {
	seen := map[string]bool{}
	for t := tbl; t != nil && t.Extends != ""; t = col.TableByID(t.Extends) {
		if seen[t.ID] {
			return fmt.Errorf("%w through table %q", errExtendsCycle, tbl.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

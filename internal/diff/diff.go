// Package diff compares two annotation extraction reports. It is the basis
// for snapshot stability checks: a model change only matters for migration
// scaffolding when it changes the extracted annotations, and the differ
// reports exactly which annotations were added, removed, or changed per
// schema object, in deterministic order.
package diff

import (
	"reflect"

	"pganno/internal/extract"
	"pganno/internal/model"
)

// AnnotationChange records one annotation present in both reports with a
// different value.
type AnnotationChange struct {
	Name string `json:"name"`
	Old  any    `json:"old"`
	New  any    `json:"new"`
}

// ObjectDiff holds the annotation changes of one schema object.
type ObjectDiff struct {
	Name    string             `json:"name,omitempty"`
	Added   []model.Annotation `json:"added,omitempty"`
	Removed []model.Annotation `json:"removed,omitempty"`
	Changed []AnnotationChange `json:"changed,omitempty"`
}

// Empty reports whether the object diff carries no changes.
func (d ObjectDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// TableDiff holds the annotation changes of one table and its columns and
// indexes. Only modified objects are listed.
type TableDiff struct {
	Table       string       `json:"table"`
	Annotations ObjectDiff   `json:"annotations,omitzero"`
	Columns     []ObjectDiff `json:"columns,omitempty"`
	Indexes     []ObjectDiff `json:"indexes,omitempty"`
}

// ReportDiff is the complete difference between two extraction reports.
// Tables present in only one report are listed by identifier; tables present
// in both with differing annotations appear as TableDiffs in the new
// report's order.
type ReportDiff struct {
	Model          ObjectDiff   `json:"model,omitzero"`
	AddedTables    []string     `json:"addedTables,omitempty"`
	RemovedTables  []string     `json:"removedTables,omitempty"`
	ModifiedTables []*TableDiff `json:"modifiedTables,omitempty"`
}

// Empty reports whether the two reports extract identically.
func (d *ReportDiff) Empty() bool {
	return d.Model.Empty() &&
		len(d.AddedTables) == 0 &&
		len(d.RemovedTables) == 0 &&
		len(d.ModifiedTables) == 0
}

// Compare computes the annotation difference between two extraction reports.
func Compare(old, new *extract.Report) *ReportDiff {
	d := &ReportDiff{
		Model: compareAnnotations("", old.Model, new.Model),
	}

	oldTables := make(map[string]*extract.TableReport, len(old.Tables))
	for i := range old.Tables {
		oldTables[old.Tables[i].Table.String()] = &old.Tables[i]
	}
	newTables := make(map[string]bool, len(new.Tables))

	for i := range new.Tables {
		nt := &new.Tables[i]
		key := nt.Table.String()
		newTables[key] = true

		ot, ok := oldTables[key]
		if !ok {
			d.AddedTables = append(d.AddedTables, key)
			continue
		}
		if td := compareTables(ot, nt); td != nil {
			d.ModifiedTables = append(d.ModifiedTables, td)
		}
	}
	for i := range old.Tables {
		if key := old.Tables[i].Table.String(); !newTables[key] {
			d.RemovedTables = append(d.RemovedTables, key)
		}
	}
	return d
}

func compareTables(old, new *extract.TableReport) *TableDiff {
	td := &TableDiff{
		Table:       new.Table.String(),
		Annotations: compareAnnotations("", old.Annotations, new.Annotations),
		Columns:     compareObjects(old.Columns, new.Columns),
		Indexes:     compareObjects(old.Indexes, new.Indexes),
	}
	if td.Annotations.Empty() && len(td.Columns) == 0 && len(td.Indexes) == 0 {
		return nil
	}
	return td
}

// compareObjects matches columns or indexes by name. An object present in
// only one report contributes all of its annotations as added or removed.
func compareObjects(old, new []extract.ObjectReport) []ObjectDiff {
	oldByName := make(map[string]*extract.ObjectReport, len(old))
	for i := range old {
		oldByName[old[i].Name] = &old[i]
	}
	newNames := make(map[string]bool, len(new))

	var diffs []ObjectDiff
	for i := range new {
		no := &new[i]
		newNames[no.Name] = true

		var oldAnns []model.Annotation
		if oo, ok := oldByName[no.Name]; ok {
			oldAnns = oo.Annotations
		}
		if od := compareAnnotations(no.Name, oldAnns, no.Annotations); !od.Empty() {
			diffs = append(diffs, od)
		}
	}
	for i := range old {
		oo := &old[i]
		if newNames[oo.Name] {
			continue
		}
		if od := compareAnnotations(oo.Name, oo.Annotations, nil); !od.Empty() {
			diffs = append(diffs, od)
		}
	}
	return diffs
}

// compareAnnotations matches annotations by name. Names are unique per
// object, so added/removed/changed ordering follows the source report's
// emission order.
func compareAnnotations(name string, old, new []model.Annotation) ObjectDiff {
	d := ObjectDiff{Name: name}

	oldByName := make(map[string]model.Annotation, len(old))
	for _, a := range old {
		oldByName[a.Name] = a
	}
	newNames := make(map[string]bool, len(new))

	for _, a := range new {
		newNames[a.Name] = true
		oa, ok := oldByName[a.Name]
		if !ok {
			d.Added = append(d.Added, a)
			continue
		}
		if !reflect.DeepEqual(oa.Value, a.Value) {
			d.Changed = append(d.Changed, AnnotationChange{Name: a.Name, Old: oa.Value, New: a.Value})
		}
	}
	for _, a := range old {
		if !newNames[a.Name] {
			d.Removed = append(d.Removed, a)
		}
	}
	return d
}

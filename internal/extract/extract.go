// Package extract assembles per-object annotation reports. It walks a
// resolved model with a dialect annotation provider and collects the emitted
// annotations into a flat, deterministically ordered report, the unit
// consumed by the formatters, the differ, and the CLI.
package extract

import (
	"pganno/internal/dialect"
	"pganno/internal/model"
)

// ObjectReport holds the annotations extracted for one column or index.
type ObjectReport struct {
	Name        string             `json:"name"`
	Annotations []model.Annotation `json:"annotations,omitempty"`
}

// TableReport holds the annotations extracted for one table and its columns
// and indexes.
type TableReport struct {
	Table       model.TableIdentifier `json:"table"`
	Annotations []model.Annotation    `json:"annotations,omitempty"`
	Columns     []ObjectReport        `json:"columns,omitempty"`
	Indexes     []ObjectReport        `json:"indexes,omitempty"`
}

// Report is a full extraction result. Object order follows model declaration
// order and annotation order follows provider emission order, so two
// extractions of the same model always produce identical reports.
type Report struct {
	Model  []model.Annotation `json:"model,omitempty"`
	Tables []TableReport      `json:"tables,omitempty"`
}

// Extract runs the provider over every object view of the model. When
// designTime is false the provider emits nothing and the report is empty.
func Extract(m *model.Model, provider dialect.AnnotationProvider, designTime bool) *Report {
	report := &Report{Model: provider.ForModel(m, designTime)}

	for _, t := range m.Tables {
		tr := TableReport{
			Table:       t.ID,
			Annotations: provider.ForTable(t, designTime),
		}
		for _, c := range t.Columns {
			tr.Columns = append(tr.Columns, ObjectReport{
				Name:        c.Name,
				Annotations: provider.ForColumn(c, designTime),
			})
		}
		for _, i := range t.Indexes {
			tr.Indexes = append(tr.Indexes, ObjectReport{
				Name:        i.Name,
				Annotations: provider.ForIndex(i, designTime),
			})
		}
		report.Tables = append(report.Tables, tr)
	}
	return report
}

// Empty reports whether the report carries no annotations at all.
func (r *Report) Empty() bool {
	if len(r.Model) > 0 {
		return false
	}
	for _, t := range r.Tables {
		if len(t.Annotations) > 0 {
			return false
		}
		for _, c := range t.Columns {
			if len(c.Annotations) > 0 {
				return false
			}
		}
		for _, i := range t.Indexes {
			if len(i.Annotations) > 0 {
				return false
			}
		}
	}
	return true
}

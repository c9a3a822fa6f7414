package output

import (
	"fmt"
	"strings"

	"pganno/internal/diff"
	"pganno/internal/extract"
	"pganno/internal/model"
)

type humanFormatter struct{}

// FormatReport renders a report as an indented object tree, skipping objects
// without annotations.
func (humanFormatter) FormatReport(r *extract.Report) (string, error) {
	if r == nil || r.Empty() {
		return "no annotations\n", nil
	}

	var b strings.Builder
	if len(r.Model) > 0 {
		b.WriteString("model:\n")
		writeAnnotations(&b, "  ", r.Model)
	}
	for _, t := range r.Tables {
		if tableEmpty(&t) {
			continue
		}
		fmt.Fprintf(&b, "table %s:\n", t.Table)
		writeAnnotations(&b, "  ", t.Annotations)
		writeObjects(&b, "column", t.Columns)
		writeObjects(&b, "index", t.Indexes)
	}
	return b.String(), nil
}

// FormatDiff renders a report diff with +/-/~ markers per annotation.
func (humanFormatter) FormatDiff(d *diff.ReportDiff) (string, error) {
	if d == nil || d.Empty() {
		return "no annotation changes\n", nil
	}

	var b strings.Builder
	if !d.Model.Empty() {
		b.WriteString("model:\n")
		writeObjectDiff(&b, "  ", d.Model)
	}
	for _, name := range d.AddedTables {
		fmt.Fprintf(&b, "added table %s\n", name)
	}
	for _, name := range d.RemovedTables {
		fmt.Fprintf(&b, "removed table %s\n", name)
	}
	for _, td := range d.ModifiedTables {
		fmt.Fprintf(&b, "table %s:\n", td.Table)
		writeObjectDiff(&b, "  ", td.Annotations)
		writeObjectDiffs(&b, "column", td.Columns)
		writeObjectDiffs(&b, "index", td.Indexes)
	}
	return b.String(), nil
}

func tableEmpty(t *extract.TableReport) bool {
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
	return true
}

func writeObjects(b *strings.Builder, kind string, objects []extract.ObjectReport) {
	for _, o := range objects {
		if len(o.Annotations) == 0 {
			continue
		}
		fmt.Fprintf(b, "  %s %s:\n", kind, o.Name)
		writeAnnotations(b, "    ", o.Annotations)
	}
}

func writeAnnotations(b *strings.Builder, indent string, anns []model.Annotation) {
	for _, a := range anns {
		fmt.Fprintf(b, "%s%s = %s\n", indent, a.Name, formatValue(a.Value))
	}
}

func writeObjectDiffs(b *strings.Builder, kind string, diffs []diff.ObjectDiff) {
	for _, od := range diffs {
		fmt.Fprintf(b, "  %s %s:\n", kind, od.Name)
		writeObjectDiff(b, "    ", od)
	}
}

func writeObjectDiff(b *strings.Builder, indent string, od diff.ObjectDiff) {
	for _, a := range od.Added {
		fmt.Fprintf(b, "%s+ %s = %s\n", indent, a.Name, formatValue(a.Value))
	}
	for _, a := range od.Removed {
		fmt.Fprintf(b, "%s- %s = %s\n", indent, a.Name, formatValue(a.Value))
	}
	for _, ch := range od.Changed {
		fmt.Fprintf(b, "%s~ %s: %s -> %s\n", indent, ch.Name, formatValue(ch.Old), formatValue(ch.New))
	}
}

// formatValue renders annotation values compactly: strings quoted, string
// lists bracketed, everything else via the default verb.
func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	default:
		return fmt.Sprintf("%v", v)
	}
}

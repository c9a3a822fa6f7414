package output

import (
	"encoding/json"

	"pganno/internal/diff"
	"pganno/internal/extract"
)

type jsonFormatter struct{}

type reportSummary struct {
	Tables      int `json:"tables"`
	Annotations int `json:"annotations"`
}

type reportPayload struct {
	Format  string        `json:"format"`
	Summary reportSummary `json:"summary"`
	*extract.Report
}

type diffSummary struct {
	AddedTables    int `json:"addedTables"`
	RemovedTables  int `json:"removedTables"`
	ModifiedTables int `json:"modifiedTables"`
}

type diffPayload struct {
	Format  string      `json:"format"`
	Summary diffSummary `json:"summary"`
	*diff.ReportDiff
}

type payload interface {
	reportPayload | diffPayload
}

func (jsonFormatter) FormatReport(r *extract.Report) (string, error) {
	p := reportPayload{Format: string(FormatJSON)}
	if r != nil {
		p.Report = r
		p.Summary = reportSummary{
			Tables:      len(r.Tables),
			Annotations: countAnnotations(r),
		}
	}
	return marshalJSON(p)
}

func (jsonFormatter) FormatDiff(d *diff.ReportDiff) (string, error) {
	p := diffPayload{Format: string(FormatJSON)}
	if d != nil {
		p.ReportDiff = d
		p.Summary = diffSummary{
			AddedTables:    len(d.AddedTables),
			RemovedTables:  len(d.RemovedTables),
			ModifiedTables: len(d.ModifiedTables),
		}
	}
	return marshalJSON(p)
}

func countAnnotations(r *extract.Report) int {
	n := len(r.Model)
	for _, t := range r.Tables {
		n += len(t.Annotations)
		for _, c := range t.Columns {
			n += len(c.Annotations)
		}
		for _, i := range t.Indexes {
			n += len(i.Annotations)
		}
	}
	return n
}

func marshalJSON[T payload](p T) (string, error) {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

// Package checklist reconciles an institution's PG regulation compliance
// records with a checklist template.
package checklist

import "accredify/apiclient"

// Effective is what an item shows for an institution: the stored record's
// values, or the implicit default when nothing is stored yet.
type Effective struct {
	Status      string
	Comment     string
	EvidenceURL string
	// Recorded is false when no compliance record exists. Comment and
	// evidence edits are only possible once one does.
	Recorded bool
}

// EffectiveCompliance resolves a possibly absent record. Absence means
// status NO with empty comment and evidence; that default is never written
// to the backend on its own.
func EffectiveCompliance(rec *apiclient.Compliance) Effective {
	if rec == nil {
		return Effective{Status: apiclient.StatusNo}
	}
	status := rec.Status
	if status == "" {
		status = apiclient.StatusNo
	}
	return Effective{
		Status:      status,
		Comment:     rec.Comment,
		EvidenceURL: rec.EvidenceURL,
		Recorded:    true,
	}
}

// Board maps item ids to one institution's compliance records. Records for
// items outside the template being viewed are kept but never rendered.
type Board struct {
	institution string
	records     map[string]apiclient.Compliance
}

// NewBoard indexes records by item for institution. Records belonging to
// any other institution are dropped.
func NewBoard(institution string, records []apiclient.Compliance) *Board {
	b := &Board{
		institution: institution,
		records:     make(map[string]apiclient.Compliance, len(records)),
	}
	for _, rec := range records {
		if rec.Institution != "" && rec.Institution != institution {
			continue
		}
		b.records[rec.Item] = rec
	}
	return b
}

func (b *Board) Institution() string { return b.institution }

// Len is the number of records held, including ones outside any template.
func (b *Board) Len() int { return len(b.records) }

// Record returns the stored record for item, if any.
func (b *Board) Record(itemID string) (apiclient.Compliance, bool) {
	rec, ok := b.records[itemID]
	return rec, ok
}

func (b *Board) Effective(itemID string) Effective {
	if rec, ok := b.records[itemID]; ok {
		return EffectiveCompliance(&rec)
	}
	return EffectiveCompliance(nil)
}

// Put replaces the entry for rec's item with the server's copy.
func (b *Board) Put(rec apiclient.Compliance) {
	if rec.Institution != "" && rec.Institution != b.institution {
		return
	}
	b.records[rec.Item] = rec
}

// Row is one template item with its effective compliance.
type Row struct {
	Section   apiclient.ProformaSection
	Item      apiclient.ProformaItem
	Effective Effective
}

// Rows lists every item of tmpl in section and item order.
func (b *Board) Rows(tmpl apiclient.ProformaTemplate) []Row {
	var rows []Row
	for _, sec := range tmpl.Sections {
		for _, item := range sec.Items {
			rows = append(rows, Row{Section: sec, Item: item, Effective: b.Effective(item.ID)})
		}
	}
	return rows
}

// Summary counts effective statuses over a template.
type Summary struct {
	Total             int
	ByStatus          map[string]int
	CriticalTotal     int
	CriticalUnmet     int
	Unrecorded        int
	CompliancePercent float64
}

// Summarize counts rows by status. Critical items count as unmet unless
// their status is YES or NA. The percentage is YES over applicable (non-NA)
// items.
func Summarize(rows []Row) Summary {
	s := Summary{ByStatus: map[string]int{}}
	for _, st := range apiclient.Statuses {
		s.ByStatus[st] = 0
	}
	for _, r := range rows {
		s.Total++
		s.ByStatus[r.Effective.Status]++
		if !r.Effective.Recorded {
			s.Unrecorded++
		}
		if r.Item.IsLicensingCritical {
			s.CriticalTotal++
			if r.Effective.Status != apiclient.StatusYes && r.Effective.Status != apiclient.StatusNA {
				s.CriticalUnmet++
			}
		}
	}
	if applicable := s.Total - s.ByStatus[apiclient.StatusNA]; applicable > 0 {
		s.CompliancePercent = float64(s.ByStatus[apiclient.StatusYes]) * 100 / float64(applicable)
	}
	return s
}

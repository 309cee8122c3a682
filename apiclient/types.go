package apiclient

import "encoding/json"

// Compliance status values accepted by the backend.
const (
	StatusYes     = "YES"
	StatusNo      = "NO"
	StatusPartial = "PARTIAL"
	StatusNA      = "NA"
)

// Statuses lists the compliance statuses in display order.
var Statuses = []string{StatusYes, StatusNo, StatusPartial, StatusNA}

// ValidStatus reports whether s is one of the backend's compliance statuses.
func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// StatusLabel is the human label of a compliance status.
func StatusLabel(status string) string {
	switch status {
	case StatusYes:
		return "Yes"
	case StatusNo:
		return "No"
	case StatusPartial:
		return "Partial"
	case StatusNA:
		return "N/A"
	default:
		return status
	}
}

type Module struct {
	ID          string `json:"id"`
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

type ProformaItem struct {
	ID                     string  `json:"id"`
	Code                   string  `json:"code"`
	Text                   string  `json:"text"`
	RequirementText        string  `json:"requirement_text"`
	RequiredEvidenceType   string  `json:"required_evidence_type,omitempty"`
	ImplementationCriteria string  `json:"implementation_criteria,omitempty"`
	Order                  int     `json:"order"`
	Weight                 float64 `json:"weight"`
	MaxScore               float64 `json:"max_score"`
	IsLicensingCritical    bool    `json:"is_licensing_critical"`
}

// Requirement returns the text shown for the item, preferring the
// requirement wording over the short text.
func (i ProformaItem) Requirement() string {
	if i.RequirementText != "" {
		return i.RequirementText
	}
	return i.Text
}

type ProformaSection struct {
	ID          string         `json:"id"`
	Code        string         `json:"code"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Order       int            `json:"order"`
	Weight      float64        `json:"weight"`
	Items       []ProformaItem `json:"items"`
}

type ProformaTemplate struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Title         string            `json:"title"`
	AuthorityName string            `json:"authority_name,omitempty"`
	Version       string            `json:"version"`
	Description   string            `json:"description"`
	IsActive      bool              `json:"is_active"`
	Sections      []ProformaSection `json:"sections"`
}

type Institution struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	City string `json:"city,omitempty"`
	Type string `json:"type,omitempty"`
}

// Label is the name shown in the institution selector.
func (i Institution) Label() string {
	if i.City == "" {
		return i.Name
	}
	return i.Name + " (" + i.City + ")"
}

// Compliance is one PGItemCompliance record: the status of a checklist item
// for one institution.
type Compliance struct {
	ID          string `json:"id"`
	Institution string `json:"institution,omitempty"`
	Item        string `json:"item"`
	Status      string `json:"status"`
	Comment     string `json:"comment"`
	EvidenceURL string `json:"evidence_url"`
	// UpdatedBy is the backend's user reference, numeric in practice. It is
	// kept undecoded since nothing here reads it.
	UpdatedBy json.RawMessage `json:"updated_by,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}

// ComplianceCreate is the body of POST /pg/compliance/.
type ComplianceCreate struct {
	Institution string `json:"institution" validate:"required"`
	Item        string `json:"item" validate:"required"`
	Status      string `json:"status" validate:"required,oneof=YES NO PARTIAL NA"`
	Comment     string `json:"comment"`
	EvidenceURL string `json:"evidence_url" validate:"omitempty,url"`
}

// CompliancePatch is the body of PATCH /pg/compliance/{id}/. Nil fields are
// left out of the request so only the changed field is sent.
type CompliancePatch struct {
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=YES NO PARTIAL NA"`
	Comment     *string `json:"comment,omitempty"`
	EvidenceURL *string `json:"evidence_url,omitempty" validate:"omitempty,url"`
}

// ComplianceFilter narrows GET /pg/compliance/.
type ComplianceFilter struct {
	Institution string
	Item        string
}

type ItemStatus struct {
	ID         string   `json:"id"`
	Assignment string   `json:"assignment"`
	Item       string   `json:"item"`
	ItemText   string   `json:"item_text"`
	Status     string   `json:"status"`
	Comment    string   `json:"comment,omitempty"`
	Score      *float64 `json:"score,omitempty"`
}

type Assignment struct {
	ID            string       `json:"id"`
	Template      string       `json:"template"`
	TemplateTitle string       `json:"template_title"`
	Program       string       `json:"program"`
	ProgramName   string       `json:"program_name"`
	Title         string       `json:"title"`
	Status        string       `json:"status"`
	ItemStatuses  []ItemStatus `json:"item_statuses"`
	CreatedAt     string       `json:"created_at"`
	UpdatedAt     string       `json:"updated_at"`
}

type DashboardSummary struct {
	Modules   int `json:"modules"`
	Templates int `json:"templates"`
}

// LoginResponse is the token pair returned by POST /accounts/login/.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`

	// Raw holds the full decoded payload.
	Raw map[string]any `json:"-"`
}

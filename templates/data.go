package templates

import (
	"github.com/a-h/templ"

	"accredify/apiclient"
	"accredify/checklist"
)

// NavData drives the top navigation bar.
type NavData struct {
	ActivePath string
	Username   string
	SignedIn   bool
}

// IsActive reports whether the nav link for prefix should be highlighted.
func (n NavData) IsActive(prefix string) bool {
	if prefix == "/" {
		return n.ActivePath == "/"
	}
	return n.ActivePath == prefix || len(n.ActivePath) > len(prefix) && n.ActivePath[:len(prefix)+1] == prefix+"/"
}

type LayoutData struct {
	Title string
	Nav   NavData
}

// Fetched is a page's data together with how the fetch went.
type Fetched[T any] struct {
	State  apiclient.State
	Data   T
	Reason string
}

// FromResult converts a tagged read result into view data.
func FromResult[T any](r apiclient.Result[T]) Fetched[T] {
	return Fetched[T]{State: r.State, Data: r.Data, Reason: r.Reason()}
}

type LoginData struct {
	Username string
	Message  string
	Failed   bool
}

type DashboardData = Fetched[*apiclient.DashboardSummary]
type ModuleListData = Fetched[[]apiclient.Module]
type ModuleViewData = Fetched[*apiclient.Module]
type ProformaListData = Fetched[[]apiclient.ProformaTemplate]
type ProformaViewData = Fetched[*apiclient.ProformaTemplate]
type AssignmentListData = Fetched[[]apiclient.Assignment]
type AssignmentViewData = Fetched[*apiclient.Assignment]

// Option is one entry of a select box.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// StatusChoice is one radio button of an item's status group.
type StatusChoice struct {
	Value   string
	Label   string
	Checked bool
}

// ChecklistItemData is one editable checklist item.
type ChecklistItemData struct {
	InstitutionID string
	TemplateID    string
	ItemID        string
	Code          string
	Requirement   string
	EvidenceType  string
	Critical      bool
	Status        string
	Comment       string
	EvidenceURL   string
	Recorded      bool
	Choices       []StatusChoice
}

type ChecklistSectionData struct {
	ID          string
	Code        string
	Title       string
	Description string
	Items       []ChecklistItemData
}

// ChecklistData is the PG regulations page.
type ChecklistData struct {
	State  apiclient.State
	Reason string

	Institutions       []Option
	Templates          []Option
	ShowTemplateSelect bool

	InstitutionID string
	TemplateID    string
	Template      *apiclient.ProformaTemplate
	Sections      []ChecklistSectionData

	// BoardReason is set when the institution's records could not be loaded.
	BoardReason string
	Summary     checklist.Summary
}

// ShowPrompt is true when no institution is selected yet.
func (d ChecklistData) ShowPrompt() bool { return d.InstitutionID == "" }

// ShowChecklist is true when both an institution and a template are selected.
func (d ChecklistData) ShowChecklist() bool {
	return d.InstitutionID != "" && d.Template != nil && d.BoardReason == ""
}

// NewChecklistItem builds the view of one item from a board row.
func NewChecklistItem(institutionID, templateID string, row checklist.Row) ChecklistItemData {
	item := ChecklistItemData{
		InstitutionID: institutionID,
		TemplateID:    templateID,
		ItemID:        row.Item.ID,
		Code:          row.Item.Code,
		Requirement:   row.Item.Requirement(),
		EvidenceType:  row.Item.RequiredEvidenceType,
		Critical:      row.Item.IsLicensingCritical,
		Status:        row.Effective.Status,
		Comment:       row.Effective.Comment,
		EvidenceURL:   row.Effective.EvidenceURL,
		Recorded:      row.Effective.Recorded,
	}
	for _, st := range apiclient.Statuses {
		item.Choices = append(item.Choices, StatusChoice{
			Value:   st,
			Label:   StatusLabel(st),
			Checked: st == row.Effective.Status,
		})
	}
	return item
}

func HomeContent() templ.Component { return view("home_content", nil) }
func HomePage(nav NavData) templ.Component {
	return Page("AccrediFy PMDC-PG", nav, HomeContent())
}

func LoginContent(data LoginData) templ.Component { return view("login_content", data) }
func LoginPage(data LoginData, nav NavData) templ.Component {
	return Page("Login", nav, LoginContent(data))
}

func DashboardContent(data DashboardData) templ.Component { return view("dashboard_content", data) }
func DashboardPage(data DashboardData, nav NavData) templ.Component {
	return Page("Dashboard", nav, DashboardContent(data))
}

func ModuleListContent(data ModuleListData) templ.Component { return view("module_list_content", data) }
func ModuleListPage(data ModuleListData, nav NavData) templ.Component {
	return Page("Modules", nav, ModuleListContent(data))
}

func ModuleViewContent(data ModuleViewData) templ.Component { return view("module_view_content", data) }
func ModuleViewPage(data ModuleViewData, nav NavData) templ.Component {
	return Page("Module Detail", nav, ModuleViewContent(data))
}

func ProformaListContent(data ProformaListData) templ.Component {
	return view("proforma_list_content", data)
}
func ProformaListPage(data ProformaListData, nav NavData) templ.Component {
	return Page("Proforma Templates", nav, ProformaListContent(data))
}

func ProformaViewContent(data ProformaViewData) templ.Component {
	return view("proforma_view_content", data)
}
func ProformaViewPage(data ProformaViewData, nav NavData) templ.Component {
	return Page("Proforma Template", nav, ProformaViewContent(data))
}

func AssignmentListContent(data AssignmentListData) templ.Component {
	return view("assignment_list_content", data)
}
func AssignmentListPage(data AssignmentListData, nav NavData) templ.Component {
	return Page("Assignments", nav, AssignmentListContent(data))
}

func AssignmentViewContent(data AssignmentViewData) templ.Component {
	return view("assignment_view_content", data)
}
func AssignmentViewPage(data AssignmentViewData, nav NavData) templ.Component {
	return Page("Assignment", nav, AssignmentViewContent(data))
}

func ChecklistContent(data ChecklistData) templ.Component { return view("checklist_content", data) }
func ChecklistPage(data ChecklistData, nav NavData) templ.Component {
	return Page("PG Regulations Checklist", nav, ChecklistContent(data))
}

// ChecklistItem is the fragment swapped in after an item edit.
func ChecklistItem(data ChecklistItemData) templ.Component { return view("checklist_item", data) }

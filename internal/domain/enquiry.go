package domain

import "time"

// Status is the sales state of an enquiry.
type Status string

const (
	StatusNew       Status = "New"
	StatusSold      Status = "Sold"
	StatusFinalised Status = "Finalised"
)

// NotApplicable is the default for rating-like fields.
const NotApplicable = "N/A"

// Enquiry is a single customer enquiry. It is the unit of both the importer
// and the duplicate resolver.
type Enquiry struct {
	ID                   int64  `json:"id"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName,omitempty"`
	Email                string `json:"email,omitempty"`
	Phone                string `json:"phone,omitempty"`
	State                string `json:"state"`
	Suburb               string `json:"suburb,omitempty"`
	Nationality          string `json:"nationality,omitempty"`
	InstitutionName      string `json:"institutionName,omitempty"`
	ProductInterest      string `json:"productInterest,omitempty"` // ", "-joined product ids
	CustomerRating       string `json:"customerRating"`
	Classification       string `json:"classification"`
	Status               Status `json:"status"`
	Source               string `json:"source,omitempty"`
	EventSource          string `json:"eventSource,omitempty"`
	Comments             string `json:"comments,omitempty"`
	SubmittedBy          string `json:"submittedBy,omitempty"`
	StepProgram          string `json:"stepProgram"`
	SalesManagerInvolved string `json:"salesManagerInvolved"`
	DoNotEmail           bool   `json:"doNotEmail"`

	// Provenance, set only by the importer.
	ImportSource string `json:"importSource,omitempty"`
	OriginalID   string `json:"originalId,omitempty"`

	// FollowUpInfo carries custom import fields as JSON text.
	FollowUpInfo string `json:"followUpInfo,omitempty"`

	// Follow-up tracking columns carried over from legacy spreadsheets.
	FupStatus               string     `json:"fupStatus,omitempty"`
	EnquiryUpdatedBy        string     `json:"enquiryUpdatedBy,omitempty"`
	SalesManagerExplanation string     `json:"salesManagerExplanation,omitempty"`
	FollowUpNotes           string     `json:"followUpNotes,omitempty"`
	InputDate               *time.Time `json:"inputDate,omitempty"`
	LastUpdate              *time.Time `json:"lastUpdate,omitempty"`
	OriginalFupDate         *time.Time `json:"originalFupDate,omitempty"`
	BestTimeToFollowUp      *time.Time `json:"bestTimeToFollowUp,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductIDs is the accepted product-interest enumeration.
var ProductIDs = []string{
	"steinway", "boston", "essex", "kawai", "yamaha", "usedpiano",
	"roland", "ritmuller", "ronisch", "kurzweil", "other",
}

// Nationalities is the nationality enumeration offered on the enquiry form.
var Nationalities = []string{"English", "Chinese", "Korean", "Japanese", "Indian", "Other"}

// AustralianState pairs a state abbreviation with its full name.
type AustralianState struct {
	Abbreviation string `json:"value"`
	Name         string `json:"label"`
}

// States lists the eight Australian states and territories.
var States = []AustralianState{
	{"ACT", "Australian Capital Territory"},
	{"NSW", "New South Wales"},
	{"NT", "Northern Territory"},
	{"QLD", "Queensland"},
	{"SA", "South Australia"},
	{"TAS", "Tasmania"},
	{"VIC", "Victoria"},
	{"WA", "Western Australia"},
}

// Ratings is the sales-funnel enumeration shared by customerRating and
// classification.
var Ratings = []string{
	NotApplicable,
	"Ready to buy",
	"High Priority",
	"After Sale Follow Up",
	"Very interested but not ready to buy",
	"Looking for information",
	"Just browsing for now",
	"Cold",
	"Events",
}

// Statuses is the enquiry status enumeration.
var Statuses = []Status{StatusNew, StatusSold, StatusFinalised}

// StandardField describes an enquiry attribute that an import column can be
// mapped onto.
type StandardField struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

// StandardFields returns the import mapping targets in display order.
func StandardFields() []StandardField {
	return []StandardField{
		{"firstName", "First Name", true},
		{"lastName", "Last Name", false},
		{"email", "Email", true},
		{"phone", "Phone", false},
		{"state", "State", true},
		{"suburb", "Suburb", false},
		{"nationality", "Nationality", false},
		{"institutionName", "Institution Name", false},
		{"productInterest", "Product Interest", false},
		{"customerRating", "Customer Rating", false},
		{"classification", "Classification", false},
		{"status", "Status", false},
		{"source", "Source", false},
		{"eventSource", "Event Source", false},
		{"comments", "Comments", false},
		{"submittedBy", "Submitted By", false},
		{"stepProgram", "Step Program", false},
		{"salesManagerInvolved", "Sales Manager Involved", false},
		{"doNotEmail", "Do Not Email", false},
		{"createdAt", "Created At", false},
		{"inputDate", "Input Date", false},
		{"lastUpdate", "Last Update", false},
		{"fupStatus", "Follow-up Status", false},
		{"originalFupDate", "Original Follow-up Date", false},
		{"bestTimeToFollowUp", "Best Time To Follow Up", false},
		{"enquiryUpdatedBy", "Enquiry Updated By", false},
		{"salesManagerExplanation", "Sales Manager Explanation", false},
		{"followUpNotes", "Follow-up Notes", false},
		{"followUpInfo", "Follow-up Info", false},
		{"originalId", "Original ID", false},
		{"importSource", "Import Source", false},
	}
}

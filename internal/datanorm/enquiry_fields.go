package datanorm

import (
	"time"

	"github.com/ignite/enquiry-crm/internal/domain"
)

type fieldSetter func(e *domain.Enquiry, v string)

// enquirySetters holds every enquiry attribute an import mapping may target.
// Values arrive already normalized.
var enquirySetters = map[string]fieldSetter{
	"firstName":               func(e *domain.Enquiry, v string) { e.FirstName = v },
	"lastName":                func(e *domain.Enquiry, v string) { e.LastName = v },
	"email":                   func(e *domain.Enquiry, v string) { e.Email = v },
	"phone":                   func(e *domain.Enquiry, v string) { e.Phone = v },
	"state":                   func(e *domain.Enquiry, v string) { e.State = v },
	"suburb":                  func(e *domain.Enquiry, v string) { e.Suburb = v },
	"nationality":             func(e *domain.Enquiry, v string) { e.Nationality = v },
	"institutionName":         func(e *domain.Enquiry, v string) { e.InstitutionName = v },
	"productInterest":         func(e *domain.Enquiry, v string) { e.ProductInterest = v },
	"customerRating":          func(e *domain.Enquiry, v string) { e.CustomerRating = v },
	"classification":          func(e *domain.Enquiry, v string) { e.Classification = v },
	"status":                  func(e *domain.Enquiry, v string) { e.Status = domain.Status(v) },
	"source":                  func(e *domain.Enquiry, v string) { e.Source = v },
	"eventSource":             func(e *domain.Enquiry, v string) { e.EventSource = v },
	"comments":                func(e *domain.Enquiry, v string) { e.Comments = v },
	"submittedBy":             func(e *domain.Enquiry, v string) { e.SubmittedBy = v },
	"stepProgram":             func(e *domain.Enquiry, v string) { e.StepProgram = v },
	"salesManagerInvolved":    func(e *domain.Enquiry, v string) { e.SalesManagerInvolved = v },
	"doNotEmail":              func(e *domain.Enquiry, v string) { e.DoNotEmail = v == "true" },
	"importSource":            func(e *domain.Enquiry, v string) { e.ImportSource = v },
	"originalId":              func(e *domain.Enquiry, v string) { e.OriginalID = v },
	"followUpInfo":            func(e *domain.Enquiry, v string) { e.FollowUpInfo = v },
	"fupStatus":               func(e *domain.Enquiry, v string) { e.FupStatus = v },
	"enquiryUpdatedBy":        func(e *domain.Enquiry, v string) { e.EnquiryUpdatedBy = v },
	"salesManagerExplanation": func(e *domain.Enquiry, v string) { e.SalesManagerExplanation = v },
	"followUpNotes":           func(e *domain.Enquiry, v string) { e.FollowUpNotes = v },
	"createdAt": func(e *domain.Enquiry, v string) {
		if t := parseISO(v); t != nil {
			e.CreatedAt = *t
		}
	},
	"inputDate":          func(e *domain.Enquiry, v string) { e.InputDate = parseISO(v) },
	"lastUpdate":         func(e *domain.Enquiry, v string) { e.LastUpdate = parseISO(v) },
	"originalFupDate":    func(e *domain.Enquiry, v string) { e.OriginalFupDate = parseISO(v) },
	"bestTimeToFollowUp": func(e *domain.Enquiry, v string) { e.BestTimeToFollowUp = parseISO(v) },
}

// IsEnquiryField reports whether name is a mappable enquiry attribute.
func IsEnquiryField(name string) bool {
	_, ok := enquirySetters[name]
	return ok
}

func parseISO(v string) *time.Time {
	t, err := time.Parse(ISOLayout, v)
	if err != nil {
		return nil
	}
	return &t
}

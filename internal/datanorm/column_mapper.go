package datanorm

import (
	"strings"
	"unicode"

	"github.com/ignite/enquiry-crm/internal/domain"
)

// columnAliases maps squashed header names (lower-case, letters and digits
// only) to enquiry fields. When multiple raw headers mean the same thing,
// they all map here.
var columnAliases = map[string]string{
	// Names
	"firstname": "firstName",
	"fname":     "firstName",
	"first":     "firstName",
	"givenname": "firstName",
	"lastname":  "lastName",
	"lname":     "lastName",
	"last":      "lastName",
	"surname":   "lastName",

	// Contact
	"email":         "email",
	"emailaddress":  "email",
	"mail":          "email",
	"phone":         "phone",
	"phonenumber":   "phone",
	"mobile":        "phone",
	"contactnumber": "phone",

	// Location
	"state":       "state",
	"suburb":      "suburb",
	"city":        "suburb",
	"nationality": "nationality",
	"institution": "institutionName",

	// Sales funnel
	"product":              "productInterest",
	"products":             "productInterest",
	"productinterest":      "productInterest",
	"rating":               "customerRating",
	"customerrating":       "customerRating",
	"classification":       "classification",
	"status":               "status",
	"source":               "source",
	"eventsource":          "eventSource",
	"event":                "eventSource",
	"comments":             "comments",
	"comment":              "comments",
	"submittedby":          "submittedBy",
	"stepprogram":          "stepProgram",
	"salesmanagerinvolved": "salesManagerInvolved",
	"donotemail":           "doNotEmail",
	"unsubscribed":         "doNotEmail",

	// Legacy follow-up sheet columns
	"created":                 "createdAt",
	"createdat":               "createdAt",
	"enquirydate":             "createdAt",
	"inputdate":               "inputDate",
	"lastupdate":              "lastUpdate",
	"fupstatus":               "fupStatus",
	"followupstatus":          "fupStatus",
	"originalfupdate":         "originalFupDate",
	"besttimetofollowup":      "bestTimeToFollowUp",
	"enquiryupdatedby":        "enquiryUpdatedBy",
	"updatedby":               "enquiryUpdatedBy",
	"salesmanagerexplanation": "salesManagerExplanation",
	"followupnotes":           "followUpNotes",
	"notes":                   "followUpNotes",
	"followupinfo":            "followUpInfo",
	"originalid":              "originalId",
	"importsource":            "importSource",
}

// SuggestMappings proposes a mapping for every header. Headers matching a
// custom field key or label map onto that custom field; unknown headers get an
// empty (inactive) target so the admin can fill it in. Each target is
// suggested at most once.
func SuggestMappings(headers []string, custom []domain.CustomField) []domain.FieldMapping {
	required := make(map[string]bool)
	for _, f := range domain.StandardFields() {
		required[f.Key] = f.Required
	}
	customByName := make(map[string]string, len(custom)*2)
	for _, cf := range custom {
		customByName[squash(cf.Key)] = cf.Key
		customByName[squash(cf.Label)] = cf.Key
	}

	used := make(map[string]bool)
	out := make([]domain.FieldMapping, 0, len(headers))
	for _, h := range headers {
		key := squash(h)
		target, ok := columnAliases[key]
		if !ok {
			target = customByName[key]
		}
		if target != "" && used[target] {
			target = ""
		}
		if target != "" {
			used[target] = true
		}
		out = append(out, domain.FieldMapping{
			SourceField: h,
			TargetField: target,
			IsRequired:  required[target],
		})
	}
	return out
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

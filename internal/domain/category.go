package domain

// Category is the top-level kind of citizen submission.
type Category string

const (
	CategoryComplaint    Category = "complaint"
	CategoryIdea         Category = "idea"
	CategoryAppreciation Category = "appreciation"
)

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryComplaint, CategoryIdea, CategoryAppreciation:
		return true
	}
	return false
}

// Intent distinguishes a service complaint from general feedback.
type Intent string

const (
	IntentService  Intent = "service"
	IntentFeedback Intent = "feedback"
)

// IssueCategory is the closed enumeration of reportable service issues.
type IssueCategory string

const (
	IssueWaste        IssueCategory = "WASTE"
	IssueNoise        IssueCategory = "NOISE"
	IssueWater        IssueCategory = "WATER"
	IssueSewerage     IssueCategory = "SEWERAGE"
	IssueRoads        IssueCategory = "ROADS"
	IssueStreetlights IssueCategory = "STREETLIGHTS"
	IssueDrainage     IssueCategory = "DRAINAGE"
	IssuePublicHealth IssueCategory = "PUBLIC_HEALTH"
	IssueBuilding     IssueCategory = "BUILDING"
	IssueHawking      IssueCategory = "HAWKING"
	IssueSecurity     IssueCategory = "SECURITY"
	IssueOther        IssueCategory = "OTHER"
)

// AllIssueCategories lists the enumeration in declaration order.
var AllIssueCategories = []IssueCategory{
	IssueWaste,
	IssueNoise,
	IssueWater,
	IssueSewerage,
	IssueRoads,
	IssueStreetlights,
	IssueDrainage,
	IssuePublicHealth,
	IssueBuilding,
	IssueHawking,
	IssueSecurity,
	IssueOther,
}

// Valid reports whether c belongs to the enumeration.
func (c IssueCategory) Valid() bool {
	for _, candidate := range AllIssueCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

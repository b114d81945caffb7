package domain

// EventType classifies a title-history entry.
type EventType string

const (
	EventHire         EventType = "Hire"
	EventPromotion    EventType = "Promotion"
	EventContinuation EventType = "Continuation"
	EventAttrition    EventType = "Attrition"
	EventLayoff       EventType = "Layoff"
)

// Terminal reports whether the event ends a consultant's employment.
func (e EventType) Terminal() bool {
	return e == EventAttrition || e == EventLayoff
}

// ProjectKind distinguishes the two contract models.
type ProjectKind string

const (
	KindFixed           ProjectKind = "Fixed"
	KindTimeAndMaterial ProjectKind = "Time and Material"
)

// ProjectStatus is the project state machine:
// Not Started -> In Progress -> Completed | Cancelled.
type ProjectStatus string

const (
	ProjectNotStarted ProjectStatus = "Not Started"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectCompleted  ProjectStatus = "Completed"
	ProjectCancelled  ProjectStatus = "Cancelled"
)

// Active reports whether the project can still receive work.
func (s ProjectStatus) Active() bool {
	return s == ProjectNotStarted || s == ProjectInProgress
}

// DeliverableStatus is the deliverable state machine; deliverables are
// never cancelled individually.
type DeliverableStatus string

const (
	DeliverableNotStarted DeliverableStatus = "Not Started"
	DeliverableInProgress DeliverableStatus = "In Progress"
	DeliverableCompleted  DeliverableStatus = "Completed"
)

// Role is a consultant's role on a project team.
type Role string

const (
	RoleProjectManager Role = "Project Manager"
	RoleTeamLead       Role = "Team Lead"
	RoleTeamMember     Role = "Team Member"
)

// TitleCount is the number of title ranks; titles are 1..TitleCount.
const TitleCount = 6

// MinPMTitle is the lowest title eligible to run a project.
const MinPMTitle = 4

// MinLeadTitle is the lowest title eligible for the Team Lead role.
const MinLeadTitle = 3

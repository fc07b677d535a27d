package models

import "time"

// Frequency is how often members contribute.
type Frequency string

const (
	FrequencyDaily   Frequency = "Daily"
	FrequencyWeekly  Frequency = "Weekly"
	FrequencyMonthly Frequency = "Monthly"
)

// PayoutOrder selects how the payout schedule is built.
type PayoutOrder string

const (
	// PayoutAutomatic fixes the schedule to the initial membership order.
	PayoutAutomatic PayoutOrder = "Automatic"
	// PayoutVoting builds the schedule round by round from member votes.
	PayoutVoting PayoutOrder = "Voting"
)

// GroupStatus is derived from the member count versus MaxMembers.
type GroupStatus string

const (
	StatusOpen GroupStatus = "Open"
	StatusFull GroupStatus = "Full"
)

// Role is a member's role within a group.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleMember Role = "Member"
)

// JoinStatus is the state of a join request.
type JoinStatus string

const (
	JoinPending  JoinStatus = "pending"
	JoinApproved JoinStatus = "approved"
	JoinRejected JoinStatus = "rejected"
)

// ProviderManualCollection marks a payment collected in hand by a delegated collector.
// Any other provider value names a mobile-money or bank rail.
const ProviderManualCollection = "ManualCollection"

// Group is a contribution circle. It is persisted as a single JSON document and every
// service operation is a pure transformation of a Group value.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string `json:"id"`

	// Name is the display name of the group.
	Name string `json:"name"`

	// Logo is an optional image reference.
	Logo string `json:"logo,omitempty"`

	// ContributionAmount is what each member pays per period.
	ContributionAmount float64 `json:"contributionAmount"`

	Frequency   Frequency   `json:"frequency"`
	StartDate   time.Time   `json:"startDate"`
	PayoutOrder PayoutOrder `json:"payoutOrder"`

	// MaxMembers is the cohort size (at least 2).
	MaxMembers int `json:"maxMembers"`

	// Status is recomputed on every normalization.
	Status GroupStatus `json:"status"`

	// MembersList is ordered by admission; the order is the tie-breaker for payouts.
	MembersList []Member `json:"membersList"`

	JoinRequests   []JoinRequest   `json:"joinRequests"`
	PaymentsLedger []PaymentRecord `json:"paymentsLedger"`

	// PayoutSchedule is the rotation order as member IDs, without duplicates.
	PayoutSchedule []string `json:"payoutSchedule"`

	// PayoutReceived holds the member IDs who already received a payout.
	PayoutReceived []string `json:"payoutReceived"`

	Voting               Voting                `json:"voting"`
	CollectorAssignments []CollectorAssignment `json:"collectorAssignments"`
	Notifications        []Notification        `json:"notifications"`

	// CreatedBy is the user ID of the founding admin.
	CreatedBy string `json:"createdBy,omitempty"`

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64 `json:"createdAt"`

	// Version is bumped by the repository on every write and used to reject stale writers.
	Version int64 `json:"-"`
}

// Member is a participant of a group.
type Member struct {
	ID   string `json:"id"`
	Name string `json:"name"`

	// Phone is optional and, when present, a secondary unique key.
	Phone string `json:"phone,omitempty"`

	Role Role `json:"role"`
}

// UserRef is the identity of the caller as supplied by the authentication layer.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// JoinRequest is a user's request to be admitted to a group.
type JoinRequest struct {
	ID          string     `json:"id"`
	User        UserRef    `json:"user"`
	RequestedAt time.Time  `json:"requestedAt"`
	Status      JoinStatus `json:"status"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
}

// Voting is the governance container for groups with PayoutVoting.
type Voting struct {
	// CurrentRound is the 1-based ID of the round currently being played.
	CurrentRound int           `json:"currentRound"`
	Rounds       []VotingRound `json:"rounds"`
}

// VotingRound is a bounded contest deciding the next one or two payout recipients.
type VotingRound struct {
	// ID is 1-based and equals the round's position in Voting.Rounds.
	ID int `json:"id"`

	// Candidates are at most five not-yet-scheduled member IDs.
	Candidates []string `json:"candidates"`

	// Votes maps a voter's member ID to at most two chosen candidates.
	Votes map[string][]string `json:"votes"`

	Finalized bool `json:"finalized"`

	// Winners is populated only once the round is finalized.
	Winners []string `json:"winners"`
}

// CollectorAssignment delegates manual collection for a subset of members to one collector.
type CollectorAssignment struct {
	ID                string   `json:"id"`
	CollectorID       string   `json:"collectorId"`
	AssignedMemberIDs []string `json:"assignedMemberIds"`

	// IDImage is the collector's identity document, visible only to the collector
	// and the assigned members.
	IDImage string `json:"idImage,omitempty"`

	Active      bool      `json:"active"`
	AnnouncedAt time.Time `json:"announcedAt"`
}

// PaymentRecord is one contribution entry in the ledger.
type PaymentRecord struct {
	ID     string    `json:"id"`
	Amount float64   `json:"amount"`
	Date   time.Time `json:"date"`

	// PayerID is the member who paid.
	PayerID string `json:"payerId"`

	// ForMemberID is the payout recipient this contribution counts toward.
	ForMemberID string `json:"forMemberId"`

	// Provider names the payment method, e.g. a mobile-money provider or ProviderManualCollection.
	Provider string `json:"provider"`
}

// Notification is a human-readable message attached to a group.
type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Member returns the member with the given ID and its position in MembersList.
func (g *Group) Member(id string) (Member, int, bool) {
	for i, m := range g.MembersList {
		if m.ID == id {
			return m, i, true
		}
	}
	return Member{}, -1, false
}

// IsMember reports whether id belongs to a current member.
func (g *Group) IsMember(id string) bool {
	_, _, ok := g.Member(id)
	return ok
}

// IsAdmin reports whether id is the group's admin.
func (g *Group) IsAdmin(id string) bool {
	m, _, ok := g.Member(id)
	return ok && m.Role == RoleAdmin
}

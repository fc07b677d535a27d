package rosca

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
)

// AssignCollector deactivates any active assignment and appends a new active one.
// Assigned IDs that are not members are ignored.
func AssignCollector(g models.Group, collectorID string, memberIDs []string, idImage string, now time.Time) (models.Group, error) {
	if collectorID == "" {
		return g, apperrors.ErrNoCollectorSelected
	}
	if len(memberIDs) == 0 {
		return g, apperrors.ErrNoMembersSelected
	}
	if !g.IsMember(collectorID) {
		return g, apperrors.NewValidationError("collectorId", "collector is not a member of this group")
	}
	assigned := dedupe(memberIDs, g.IsMember)
	if len(assigned) == 0 {
		return g, apperrors.ErrNoMembersSelected
	}

	g = Clone(g)
	for i := range g.CollectorAssignments {
		g.CollectorAssignments[i].Active = false
	}
	g.CollectorAssignments = append(g.CollectorAssignments, models.CollectorAssignment{
		ID:                uuid.New().String(),
		CollectorID:       collectorID,
		AssignedMemberIDs: assigned,
		IDImage:           idImage,
		Active:            true,
		AnnouncedAt:       now,
	})
	notify(&g, now, "%s is now collecting contributions for %d members", memberName(&g, collectorID), len(assigned))
	return g, nil
}

// ActiveAssignment returns the active collector assignment, if any.
func ActiveAssignment(g *models.Group) (models.CollectorAssignment, bool) {
	for _, a := range g.CollectorAssignments {
		if a.Active {
			return a, true
		}
	}
	return models.CollectorAssignment{}, false
}

// AuthorizeManualCollection reports whether collectorID is the active collector for forMemberID.
func AuthorizeManualCollection(g *models.Group, collectorID, forMemberID string) bool {
	a, ok := ActiveAssignment(g)
	return ok && a.CollectorID == collectorID && contains(a.AssignedMemberIDs, forMemberID)
}

func canSeeIDImage(a models.CollectorAssignment, viewerID string) bool {
	return viewerID != "" && (a.CollectorID == viewerID || contains(a.AssignedMemberIDs, viewerID))
}

// VisibleAssignments returns the assignments as seen by viewerID: the identity document is
// blanked for everyone except the collector and the assigned members.
func VisibleAssignments(g *models.Group, viewerID string) []models.CollectorAssignment {
	out := make([]models.CollectorAssignment, len(g.CollectorAssignments))
	for i, a := range g.CollectorAssignments {
		a.AssignedMemberIDs = cloneSlice(a.AssignedMemberIDs)
		if !canSeeIDImage(a, viewerID) {
			a.IDImage = ""
		}
		out[i] = a
	}
	return out
}

// RedactFor returns a copy of g safe to show to viewerID.
func RedactFor(g models.Group, viewerID string) models.Group {
	g = Clone(g)
	g.CollectorAssignments = VisibleAssignments(&g, viewerID)
	return g
}

package api

import "github.com/mmynk/osusu/internal/models"

type GetPayoutStatusRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetPayoutStatusResponse struct {
	PayoutOrder      string              `json:"payoutOrder"`
	State            string              `json:"state"`
	CurrentRound     *models.VotingRound `json:"currentRound,omitempty"`
	Tally            map[string]int      `json:"tally,omitempty"`
	Schedule         []string            `json:"schedule"`
	Received         []string            `json:"received"`
	CurrentRecipient string              `json:"currentRecipient,omitempty"`
	Scores           map[string]float64  `json:"scores"`
}

type CastVoteRequest struct {
	GroupID      string   `json:"groupId" validate:"required"`
	RoundID      int      `json:"roundId" validate:"min=1"`
	CandidateIDs []string `json:"candidateIds" validate:"required,min=1,dive,required"`
}

type CastVoteResponse struct {
	Round models.VotingRound `json:"round"`
}

type FinalizeRoundRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	RoundID int    `json:"roundId" validate:"min=1"`
}

type FinalizeRoundResponse struct {
	Group models.Group `json:"group"`
}

type MarkReceivedRequest struct {
	GroupID  string `json:"groupId" validate:"required"`
	MemberID string `json:"memberId" validate:"required"`
}

type MarkReceivedResponse struct {
	Group models.Group `json:"group"`
}

type AssignCollectorRequest struct {
	GroupID           string   `json:"groupId" validate:"required"`
	CollectorID       string   `json:"collectorId"`
	AssignedMemberIDs []string `json:"assignedMemberIds"`
	IDImage           string   `json:"idImage,omitempty"`
}

type AssignCollectorResponse struct {
	Assignment models.CollectorAssignment `json:"assignment"`
}

type GetCollectorRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetCollectorResponse struct {
	Active      *models.CollectorAssignment  `json:"active,omitempty"`
	Assignments []models.CollectorAssignment `json:"assignments"`
}

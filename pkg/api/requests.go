package api

import (
	"github.com/jakechorley/team-rota/pkg/core/model"
	"github.com/jakechorley/team-rota/pkg/core/services"
	"github.com/jakechorley/team-rota/pkg/db"
)

const dateLayout = "2006-01-02"

// CreateSubstitutionRequest is the body of POST /substitutions
type CreateSubstitutionRequest struct {
	RequestingMemberID string `json:"requestingMemberId" validate:"required"`
	SubstituteMemberID string `json:"substituteMemberId" validate:"required"`
	ScheduleID         string `json:"scheduleId" validate:"required"`
}

// ResolveSubstitutionRequest is the body of POST /substitutions/{requestID}/resolve
type ResolveSubstitutionRequest struct {
	Accept *bool `json:"accept" validate:"required"`
	// Reassign moves the roster slot to the substitute once accepted
	Reassign bool `json:"reassign"`
}

// ConfirmAvailabilityRequest is the body of PUT /members/{memberID}/availability/{scheduleID}
type ConfirmAvailabilityRequest struct {
	Available *bool `json:"available" validate:"required"`
}

// SendBroadcastRequest is the body of POST /broadcasts
type SendBroadcastRequest struct {
	SenderID  string   `json:"senderId" validate:"required"`
	Title     string   `json:"title" validate:"required,max=200"`
	Message   string   `json:"message" validate:"required"`
	MemberIDs []string `json:"memberIds" validate:"required,min=1,dive,required"`
}

// IDResponse is returned when a resource is created
type IDResponse struct {
	ID string `json:"id"`
}

// FeedResponse is a member's notification feed
type FeedResponse struct {
	Items         []model.Notification `json:"items"`
	FailedSources []string             `json:"failedSources"`
}

// PendingSubstitution is a request awaiting the member's answer
type PendingSubstitution struct {
	ID                   string `json:"id"`
	ScheduleID           string `json:"scheduleId"`
	ScheduleTitle        string `json:"scheduleTitle"`
	ScheduleDate         string `json:"scheduleDate,omitempty"`
	RequestingMemberID   string `json:"requestingMemberId"`
	RequestingMemberName string `json:"requestingMemberName"`
}

// SweepResponse reports the outcome of a retention sweep
type SweepResponse struct {
	Cutoff               string   `json:"cutoff"`
	DeletedScheduleCount int64    `json:"deletedScheduleCount"`
	DependentFailures    []string `json:"dependentFailures"`
}

func toPendingSubstitutions(details []db.SubstitutionRequestDetail) []PendingSubstitution {
	out := make([]PendingSubstitution, 0, len(details))
	for _, d := range details {
		p := PendingSubstitution{
			ID:                   d.ID,
			ScheduleID:           d.ScheduleID,
			ScheduleTitle:        d.ScheduleTitle,
			RequestingMemberID:   d.RequestingMemberID,
			RequestingMemberName: d.RequestingMemberName,
		}
		if d.ScheduleDate != nil {
			p.ScheduleDate = d.ScheduleDate.Format(dateLayout)
		}
		out = append(out, p)
	}
	return out
}

func toSweepResponse(result *services.SweepResult) SweepResponse {
	return SweepResponse{
		Cutoff:               result.Cutoff.Format(dateLayout),
		DeletedScheduleCount: result.DeletedScheduleCount,
		DependentFailures:    result.DependentFailures,
	}
}

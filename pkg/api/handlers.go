package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/team-rota/pkg/core/services"
)

// GetNotificationFeed returns the member's ranked feed. Sources that could not be read are
// listed in failedSources; the response is still 200.
func (s *Server) GetNotificationFeed(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	result, err := services.GetNotificationFeed(r.Context(), s.store, s.logger, memberID, s.now(), s.opts.Feed)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, s.logger, http.StatusOK, FeedResponse{
		Items:         result.Items,
		FailedSources: result.FailedSources,
	})
}

// MarkAdminMessageRead marks one broadcast delivery read
func (s *Server) MarkAdminMessageRead(w http.ResponseWriter, r *http.Request) {
	recipientID := chi.URLParam(r, "recipientID")

	if err := services.MarkAdminMessageRead(r.Context(), s.store, s.logger, recipientID, s.now()); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPendingSubstitutions lists the requests awaiting the member's answer
func (s *Server) GetPendingSubstitutions(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")

	requests, err := services.RequestsAwaitingResponse(r.Context(), s.store, s.logger, memberID)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, s.logger, http.StatusOK, toPendingSubstitutions(requests))
}

// CreateSubstitutionRequest asks another member to cover a schedule
func (s *Server) CreateSubstitutionRequest(w http.ResponseWriter, r *http.Request) {
	var req CreateSubstitutionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	id, err := services.CreateSubstitutionRequest(r.Context(), s.store, s.logger,
		req.RequestingMemberID, req.SubstituteMemberID, req.ScheduleID, s.now())
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, s.logger, http.StatusCreated, IDResponse{ID: id})
}

// ResolveSubstitutionRequest accepts or rejects a pending request, optionally moving the
// roster slot to the substitute
func (s *Server) ResolveSubstitutionRequest(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "requestID")

	var req ResolveSubstitutionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	resolved, err := services.ResolveSubstitutionRequest(r.Context(), s.store, s.logger, requestID, *req.Accept, s.now())
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	if *req.Accept && req.Reassign {
		if err := services.ReassignScheduleMember(r.Context(), s.store, s.logger, resolved.ID); err != nil {
			// The request stays accepted; only the roster move failed
			s.logger.Warn("Substitution accepted but roster not reassigned",
				zap.String("request_id", resolved.ID),
				zap.Error(err))
			respondServiceError(w, s.logger, err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// ConfirmAvailability records the member's answer for a schedule
func (s *Server) ConfirmAvailability(w http.ResponseWriter, r *http.Request) {
	memberID := chi.URLParam(r, "memberID")
	scheduleID := chi.URLParam(r, "scheduleID")

	var req ConfirmAvailabilityRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := services.ConfirmAvailability(r.Context(), s.store, s.logger, memberID, scheduleID, *req.Available, s.now()); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SendBroadcast sends an admin message to a set of members
func (s *Server) SendBroadcast(w http.ResponseWriter, r *http.Request) {
	var req SendBroadcastRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	id, err := services.SendBroadcast(r.Context(), s.store, s.logger, req.SenderID, req.Title, req.Message, req.MemberIDs, s.now())
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, s.logger, http.StatusCreated, IDResponse{ID: id})
}

// DeleteBroadcast removes a broadcast and its deliveries
func (s *Server) DeleteBroadcast(w http.ResponseWriter, r *http.Request) {
	notificationID := chi.URLParam(r, "notificationID")

	if err := services.DeleteBroadcast(r.Context(), s.store, s.logger, notificationID); err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RunRetentionSweep runs one retention sweep now
func (s *Server) RunRetentionSweep(w http.ResponseWriter, r *http.Request) {
	result, err := services.RunRetentionSweep(r.Context(), s.store, s.logger, s.now(), s.opts.Sweep)
	if err != nil {
		respondServiceError(w, s.logger, err)
		return
	}

	respondJSON(w, s.logger, http.StatusOK, toSweepResponse(result))
}

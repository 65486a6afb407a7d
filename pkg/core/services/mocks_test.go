package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jakechorley/team-rota/pkg/db"
)

// mockDB is an in-memory implementation of db.Database for testing.
// errs maps a method name to the error it should return.
type mockDB struct {
	mu sync.Mutex

	members         map[string]db.Member
	teamMembers     map[string][]string // memberID -> teamIDs
	schedules       []db.Schedule
	scheduleMembers []db.ScheduleMember
	availability    []db.MemberAvailability
	substitutions   []db.SubstitutionRequest
	notifications   []db.AdminNotification
	recipients      []db.NotificationRecipient

	errs map[string]error
	// lostStatusRace makes UpdateSubstitutionStatus behave as if another writer got there first
	lostStatusRace bool
	calls          []string
}

func newMockDB() *mockDB {
	return &mockDB{
		members:     map[string]db.Member{},
		teamMembers: map[string][]string{},
		errs:        map[string]error{},
	}
}

func (m *mockDB) record(method string) error {
	m.calls = append(m.calls, method)
	return m.errs[method]
}

func boolPtr(b bool) *bool { return &b }

func date(y int, mo time.Month, d int) time.Time {
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

// AvailabilityStore

func (m *mockDB) GetMemberTeamIDs(ctx context.Context, memberID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetMemberTeamIDs"); err != nil {
		return nil, err
	}
	return append([]string{}, m.teamMembers[memberID]...), nil
}

func (m *mockDB) GetTeamSchedulesBetween(ctx context.Context, teamIDs []string, from, to time.Time) ([]db.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetTeamSchedulesBetween"); err != nil {
		return nil, err
	}
	teams := map[string]bool{}
	for _, id := range teamIDs {
		teams[id] = true
	}
	var out []db.Schedule
	for _, s := range m.schedules {
		if !teams[s.TeamID] || s.ScheduleDate.Before(from) || s.ScheduleDate.After(to) {
			continue
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduleDate.Before(out[j].ScheduleDate) })
	return out, nil
}

func (m *mockDB) GetMemberAvailability(ctx context.Context, memberID string, scheduleIDs []string) ([]db.MemberAvailability, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetMemberAvailability"); err != nil {
		return nil, err
	}
	ids := map[string]bool{}
	for _, id := range scheduleIDs {
		ids[id] = true
	}
	var out []db.MemberAvailability
	for _, a := range m.availability {
		if a.MemberID == memberID && ids[a.ScheduleID] {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockDB) UpsertMemberAvailability(ctx context.Context, availability *db.MemberAvailability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpsertMemberAvailability"); err != nil {
		return err
	}
	for i, a := range m.availability {
		if a.MemberID == availability.MemberID && a.ScheduleID == availability.ScheduleID {
			m.availability[i].Available = availability.Available
			m.availability[i].Confirmed = availability.Confirmed
			m.availability[i].UpdatedAt = availability.UpdatedAt
			return nil
		}
	}
	m.availability = append(m.availability, *availability)
	return nil
}

// SubstitutionStore

func (m *mockDB) IsScheduleMember(ctx context.Context, memberID, scheduleID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("IsScheduleMember"); err != nil {
		return false, err
	}
	for _, sm := range m.scheduleMembers {
		if sm.MemberID == memberID && sm.ScheduleID == scheduleID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDB) InsertSubstitutionRequest(ctx context.Context, request *db.SubstitutionRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InsertSubstitutionRequest"); err != nil {
		return err
	}
	m.substitutions = append(m.substitutions, *request)
	return nil
}

func (m *mockDB) GetSubstitutionRequest(ctx context.Context, requestID string) (*db.SubstitutionRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetSubstitutionRequest"); err != nil {
		return nil, err
	}
	for _, r := range m.substitutions {
		if r.ID == requestID {
			req := r
			return &req, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockDB) UpdateSubstitutionStatus(ctx context.Context, requestID string, from, to db.SubstitutionStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateSubstitutionStatus"); err != nil {
		return false, err
	}
	if m.lostStatusRace {
		return false, nil
	}
	for i, r := range m.substitutions {
		if r.ID == requestID && r.Status == from {
			m.substitutions[i].Status = to
			m.substitutions[i].UpdatedAt = at
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDB) GetPendingSubstitutionRequests(ctx context.Context, substituteMemberID string) ([]db.SubstitutionRequestDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetPendingSubstitutionRequests"); err != nil {
		return nil, err
	}
	var out []db.SubstitutionRequestDetail
	for _, r := range m.substitutions {
		if r.SubstituteMemberID != substituteMemberID || r.Status != db.SubstitutionPending {
			continue
		}
		detail := db.SubstitutionRequestDetail{
			ID:                   r.ID,
			ScheduleID:           r.ScheduleID,
			RequestingMemberID:   r.RequestingMemberID,
			RequestingMemberName: m.members[r.RequestingMemberID].Name,
		}
		for _, s := range m.schedules {
			if s.ID == r.ScheduleID {
				d := s.ScheduleDate
				detail.ScheduleTitle = s.Title
				detail.ScheduleDate = &d
			}
		}
		out = append(out, detail)
	}
	return out, nil
}

// RosterStore

func (m *mockDB) ReassignScheduleMember(ctx context.Context, scheduleID, fromMemberID, toMemberID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ReassignScheduleMember"); err != nil {
		return false, err
	}
	for i, sm := range m.scheduleMembers {
		if sm.ScheduleID == scheduleID && sm.MemberID == fromMemberID {
			m.scheduleMembers[i].MemberID = toMemberID
			return true, nil
		}
	}
	return false, nil
}

// BroadcastStore

func (m *mockDB) GetUnreadBroadcasts(ctx context.Context, memberID string) ([]db.BroadcastDelivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetUnreadBroadcasts"); err != nil {
		return nil, err
	}
	var out []db.BroadcastDelivery
	for _, r := range m.recipients {
		if r.MemberID != memberID || r.ReadAt != nil {
			continue
		}
		for _, n := range m.notifications {
			if n.ID == r.NotificationID {
				out = append(out, db.BroadcastDelivery{
					RecipientID:    r.ID,
					NotificationID: n.ID,
					Title:          n.Title,
					Message:        n.Message,
					CreatedAt:      n.CreatedAt,
				})
			}
		}
	}
	return out, nil
}

func (m *mockDB) GetNotificationRecipient(ctx context.Context, recipientID string) (*db.NotificationRecipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetNotificationRecipient"); err != nil {
		return nil, err
	}
	for _, r := range m.recipients {
		if r.ID == recipientID {
			rec := r
			return &rec, nil
		}
	}
	return nil, db.ErrNotFound
}

func (m *mockDB) MarkRecipientRead(ctx context.Context, recipientID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("MarkRecipientRead"); err != nil {
		return false, err
	}
	for i, r := range m.recipients {
		if r.ID == recipientID && r.ReadAt == nil {
			readAt := at
			m.recipients[i].ReadAt = &readAt
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDB) InsertBroadcast(ctx context.Context, notification *db.AdminNotification, recipients []db.NotificationRecipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InsertBroadcast"); err != nil {
		return err
	}
	m.notifications = append(m.notifications, *notification)
	m.recipients = append(m.recipients, recipients...)
	return nil
}

func (m *mockDB) DeleteBroadcast(ctx context.Context, notificationID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteBroadcast"); err != nil {
		return false, err
	}
	kept := m.recipients[:0]
	for _, r := range m.recipients {
		if r.NotificationID != notificationID {
			kept = append(kept, r)
		}
	}
	m.recipients = kept

	for i, n := range m.notifications {
		if n.ID == notificationID {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// RetentionStore

func (m *mockDB) GetScheduleIDsBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetScheduleIDsBefore"); err != nil {
		return nil, err
	}
	var ids []string
	for _, s := range m.schedules {
		if s.ScheduleDate.Before(cutoff) {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func (m *mockDB) DeleteScheduleMembers(ctx context.Context, scheduleIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteScheduleMembers"); err != nil {
		return 0, err
	}
	ids := idSet(scheduleIDs)
	var kept []db.ScheduleMember
	for _, sm := range m.scheduleMembers {
		if !ids[sm.ScheduleID] {
			kept = append(kept, sm)
		}
	}
	n := int64(len(m.scheduleMembers) - len(kept))
	m.scheduleMembers = kept
	return n, nil
}

func (m *mockDB) DeleteMemberAvailability(ctx context.Context, scheduleIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteMemberAvailability"); err != nil {
		return 0, err
	}
	ids := idSet(scheduleIDs)
	var kept []db.MemberAvailability
	for _, a := range m.availability {
		if !ids[a.ScheduleID] {
			kept = append(kept, a)
		}
	}
	n := int64(len(m.availability) - len(kept))
	m.availability = kept
	return n, nil
}

func (m *mockDB) DeleteSubstitutionRequests(ctx context.Context, scheduleIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteSubstitutionRequests"); err != nil {
		return 0, err
	}
	ids := idSet(scheduleIDs)
	var kept []db.SubstitutionRequest
	for _, r := range m.substitutions {
		if !ids[r.ScheduleID] {
			kept = append(kept, r)
		}
	}
	n := int64(len(m.substitutions) - len(kept))
	m.substitutions = kept
	return n, nil
}

func (m *mockDB) DeleteSchedules(ctx context.Context, scheduleIDs []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteSchedules"); err != nil {
		return 0, err
	}
	ids := idSet(scheduleIDs)
	var kept []db.Schedule
	for _, s := range m.schedules {
		if !ids[s.ID] {
			kept = append(kept, s)
		}
	}
	n := int64(len(m.schedules) - len(kept))
	m.schedules = kept
	return n, nil
}

// WithinTransaction restores the previous state if fn fails
func (m *mockDB) WithinTransaction(ctx context.Context, fn func(tx db.RetentionStore) error) error {
	m.mu.Lock()
	if err := m.record("WithinTransaction"); err != nil {
		m.mu.Unlock()
		return err
	}
	schedules := append([]db.Schedule{}, m.schedules...)
	scheduleMembers := append([]db.ScheduleMember{}, m.scheduleMembers...)
	availability := append([]db.MemberAvailability{}, m.availability...)
	substitutions := append([]db.SubstitutionRequest{}, m.substitutions...)
	m.mu.Unlock()

	if err := fn(m); err != nil {
		m.mu.Lock()
		m.schedules = schedules
		m.scheduleMembers = scheduleMembers
		m.availability = availability
		m.substitutions = substitutions
		m.mu.Unlock()
		return err
	}
	return nil
}

// retentionOnly hides the transaction support of a store
type retentionOnly struct {
	db.RetentionStore
}

var _ db.Database = (*mockDB)(nil)

package db

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by store lookups that match no row
	ErrNotFound = errors.New("record not found")
	// ErrInvalidReference is returned by writes naming a member, schedule or notification that
	// does not exist
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// MemberRole is the instrument/function tag of a member
type MemberRole string

const (
	RoleVocal         MemberRole = "vocal"
	RoleGuitarra      MemberRole = "guitarra"
	RoleBaixo         MemberRole = "baixo"
	RoleBateria       MemberRole = "bateria"
	RoleTeclado       MemberRole = "teclado"
	RoleViolao        MemberRole = "violao"
	RoleTecnicoSom    MemberRole = "tecnico_som"
	RoleTecnicoImagem MemberRole = "tecnico_imagem"
	RoleMinistro      MemberRole = "ministro"
)

// ScheduleType tags a schedule as a regular or special event
type ScheduleType string

const (
	ScheduleTypeNormal   ScheduleType = "normal"
	ScheduleTypeEspecial ScheduleType = "especial"
)

// SubstitutionStatus is the workflow state of a substitution request
type SubstitutionStatus string

const (
	SubstitutionPending  SubstitutionStatus = "pending"
	SubstitutionAccepted SubstitutionStatus = "accepted"
	SubstitutionRejected SubstitutionStatus = "rejected"
)

// Member represents a database member record
type Member struct {
	ID     string
	Name   string
	Email  string // empty if unset
	Role   MemberRole
	Active bool
}

// Team represents a database team record
type Team struct {
	ID     string
	Name   string
	Active bool
}

// Schedule represents a dated event owned by a team
type Schedule struct {
	ID           string
	Title        string
	Notes        string       // empty if unset
	ScheduleDate time.Time    // date only, UTC midnight
	ScheduleType ScheduleType // empty if unset
	TeamID       string       // empty if the schedule has no team
}

// ScheduleMember assigns a member to a schedule
type ScheduleMember struct {
	ID         string
	ScheduleID string
	MemberID   string
	Instrument string // empty if unset
}

// MemberAvailability is the single availability row for a (member, schedule) pair.
// A nil pointer means the value is unknown / not yet given.
type MemberAvailability struct {
	ID         string
	MemberID   string
	ScheduleID string
	Available  *bool
	Confirmed  *bool
	UpdatedAt  time.Time
}

// IsConfirmed reports whether the member has explicitly confirmed
func (a MemberAvailability) IsConfirmed() bool {
	return a.Confirmed != nil && *a.Confirmed
}

// SubstitutionRequest represents a database substitution request record
type SubstitutionRequest struct {
	ID                 string
	RequestingMemberID string
	SubstituteMemberID string
	ScheduleID         string
	Status             SubstitutionStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// SubstitutionRequestDetail is a pending request joined with its schedule and requester
type SubstitutionRequestDetail struct {
	ID                   string
	ScheduleID           string
	ScheduleTitle        string
	ScheduleDate         *time.Time // nil when the schedule row is gone
	RequestingMemberID   string
	RequestingMemberName string
}

// AdminNotification is an organization-wide broadcast message
type AdminNotification struct {
	ID        string
	Title     string
	Message   string
	SenderID  string
	CreatedAt time.Time
}

// NotificationRecipient targets a broadcast at one member
type NotificationRecipient struct {
	ID             string
	NotificationID string
	MemberID       string
	ReadAt         *time.Time
}

// BroadcastDelivery is a recipient row joined with its broadcast
type BroadcastDelivery struct {
	RecipientID    string
	NotificationID string
	Title          string
	Message        string
	CreatedAt      time.Time
}

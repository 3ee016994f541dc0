package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchState is the lifecycle position of a candidate's interest in a project.
// Rejection and withdrawal both delete the row, so there is no Rejected state.
type MatchState int

const (
	MatchAbsent MatchState = iota
	MatchPending
	MatchApproved
)

func (s MatchState) String() string {
	switch s {
	case MatchPending:
		return "pending"
	case MatchApproved:
		return "approved"
	default:
		return "absent"
	}
}

// MarshalText renders the state by name in JSON payloads.
func (s MatchState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Match records a candidate's interest in a project. At most one row exists per
// (user, project) pair.
type Match struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	UserID    uuid.UUID `json:"userId" db:"user_id" gorm:"type:uuid;not null;index:idx_matches_user_id;uniqueIndex:idx_matches_user_project"`
	ProjectID uuid.UUID `json:"projectId" db:"project_id" gorm:"type:uuid;not null;index:idx_matches_project_id;uniqueIndex:idx_matches_user_project"`
	Approved  bool      `json:"approved" db:"approved" gorm:"not null;default:false"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" gorm:"autoUpdateTime"`
}

// State derives the lifecycle state of a stored match.
func (m *Match) State() MatchState {
	if m == nil {
		return MatchAbsent
	}
	if m.Approved {
		return MatchApproved
	}
	return MatchPending
}

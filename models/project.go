package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Project is a team a founder is recruiting for. FounderID is a back-reference used
// for authorization and is always resolved through the store.
type Project struct {
	ID           uuid.UUID                   `json:"id" db:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid();not null"`
	Slug         string                      `json:"slug" db:"slug" gorm:"type:text;not null;uniqueIndex:idx_projects_slug"`
	Title        string                      `json:"title" db:"title" gorm:"type:text;not null"`
	Description  string                      `json:"description" db:"description" gorm:"type:text;not null"`
	FounderID    uuid.UUID                   `json:"founderId" db:"founder_id" gorm:"type:uuid;not null;index:idx_projects_founder_id"`
	Levels       datatypes.JSONSlice[string] `json:"levels" db:"levels" gorm:"type:jsonb"`
	Technologies []ProjectTag                `json:"technologies,omitempty" gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:CASCADE"`
	Version      int                         `json:"version" db:"version" gorm:"type:integer;not null;default:1"`
	CreatedAt    time.Time                   `json:"createdAt" db:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time                   `json:"updatedAt" db:"updated_at" gorm:"autoUpdateTime"`
}

// TechnologyValues returns the technology tag values in stored order.
func (p *Project) TechnologyValues() []string {
	values := make([]string, 0, len(p.Technologies))
	for _, tag := range p.Technologies {
		values = append(values, tag.Value)
	}
	return values
}

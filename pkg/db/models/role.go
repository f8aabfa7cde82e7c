package models

import (
	"github.com/dexxrat/gamestore-backend/pkg/enums"
	"github.com/google/uuid"
)

// Role is an assignable authorization grant.
type Role struct {
	ID   uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name enums.RoleName `gorm:"column:name;not null;uniqueIndex"`
}

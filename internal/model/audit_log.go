// internal/model/audit_log.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AccessAuditLog records an admin change to who can see what.
type AccessAuditLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Timestamp  time.Time  `json:"timestamp" gorm:"default:CURRENT_TIMESTAMP"`
	ActionType string     `json:"action_type"`
	ActorID    *uuid.UUID `json:"actor_id" gorm:"type:uuid"`
	EntityType string     `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	Context    JSONMap    `json:"context" gorm:"type:jsonb"`
	RequestID  string     `json:"request_id"`
	ClientIP   string     `json:"client_ip"`
	UserAgent  string     `json:"user_agent"`
}

func (AccessAuditLog) TableName() string {
	return "access_audit_logs"
}

// JSONMap represents a generic map stored as JSONB in the database
type JSONMap map[string]interface{}

// Value implements the driver.Valuer interface for JSONMap
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements the sql.Scanner interface for JSONMap
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("type assertion failed: failed to decode JSONB")
	}

	return json.Unmarshal(bytes, m)
}

const (
	ActionOpportunityGrantsReplace = "opportunity_grants_replace"
	ActionFileGrantsReplace        = "file_grants_replace"
	ActionOpportunityVisibility    = "opportunity_visibility_change"
	ActionFileVisibility           = "file_visibility_change"
	ActionOpportunityDelete        = "opportunity_delete"
	ActionFileDelete               = "file_delete"
)

const (
	EntityOpportunity = "opportunity"
	EntityFile        = "file"
)

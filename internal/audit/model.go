// File: internal/audit/model.go
package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	// ActionCreateUser is recorded for every user provisioning attempt.
	ActionCreateUser = "user.create"
	// OutcomeSuccess marks a successful action. Failures carry the API error code.
	OutcomeSuccess = "SUCCESS"
)

// Event is one provisioning action performed against the identity provider.
type Event struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Action    string    `gorm:"type:varchar(64);not null;index" json:"action"`
	Realm     string    `gorm:"type:varchar(255);not null" json:"realm"`
	Actor     string    `gorm:"type:varchar(255)" json:"actor,omitempty"`
	TargetID  string    `gorm:"type:varchar(64)" json:"targetId,omitempty"`
	Username  string    `gorm:"type:varchar(255)" json:"username,omitempty"`
	Outcome   string    `gorm:"type:varchar(64);not null" json:"outcome"`
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// TableName pins the table name.
func (Event) TableName() string {
	return "provisioning_audit_events"
}

// BeforeCreate assigns an id when the caller did not.
func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// AutoMigrate creates or updates the audit table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Event{})
}

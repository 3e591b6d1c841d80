package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MeterTenant links a meter to a tenant for a closed date interval
// [AssignedFrom, AssignedTo]: the end date is the last day the tenant
// is still assigned. A nil AssignedTo means the assignment is
// open-ended.
type MeterTenant struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	MeterID      snowflake.ID `json:"meter_id" gorm:"not null;index"`
	TenantID     snowflake.ID `json:"tenant_id" gorm:"not null;index"`
	AssignedFrom time.Time    `json:"assigned_from" gorm:"type:date;not null"`
	AssignedTo   *time.Time   `json:"assigned_to,omitempty" gorm:"type:date"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (MeterTenant) TableName() string { return "meter_tenants" }

// Live reports whether the assignment is open or ends at/after asOf.
func (a MeterTenant) Live(asOf time.Time) bool {
	return a.AssignedTo == nil || !a.AssignedTo.Before(asOf)
}

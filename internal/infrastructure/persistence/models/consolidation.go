package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/consolidation"
	"github.com/opsconsole/backend/internal/domain/trade"
)

// ConsolidationRunModel is the persistence model for a settled consolidation run.
type ConsolidationRunModel struct {
	TenantModel
	OperatorID     string                   `gorm:"type:varchar(100);not null;index"`
	ShippingMethod string                   `gorm:"type:varchar(20);not null"`
	Outcome        string                   `gorm:"type:varchar(20);not null;index"`
	SelectedCount  int                      `gorm:"not null;default:0"`
	EligibleCount  int                      `gorm:"not null;default:0"`
	SkippedCount   int                      `gorm:"not null;default:0"`
	RefreshFailed  bool                     `gorm:"not null;default:false"`
	StartedAt      time.Time                `gorm:"not null"`
	SettledAt      time.Time                `gorm:"not null;index"`
	Units          []ConsolidationUnitModel `gorm:"foreignKey:RunID;references:ID"`
}

// TableName returns the table name for GORM
func (ConsolidationRunModel) TableName() string {
	return "consolidation_runs"
}

// ConsolidationUnitModel is one customer's unit within a run.
type ConsolidationUnitModel struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key"`
	RunID        uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position     int        `gorm:"not null"`
	MemberID     string     `gorm:"type:varchar(100);not null"`
	CustomerName string     `gorm:"type:varchar(200)"`
	ItemIDsJSON  string     `gorm:"column:item_ids;type:text;not null"`
	Status       string     `gorm:"type:varchar(20);not null"`
	CheckoutID   *uuid.UUID `gorm:"type:uuid"`
	Reason       string     `gorm:"type:varchar(40)"`
	Message      string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ConsolidationUnitModel) TableName() string {
	return "consolidation_units"
}

// ToDomain converts the persistence model to a domain Run.
// A unit whose item_ids column does not decode fails the whole run.
func (m *ConsolidationRunModel) ToDomain() (*consolidation.Run, error) {
	run := &consolidation.Run{
		ID:             m.ID,
		TenantID:       m.TenantID,
		OperatorID:     m.OperatorID,
		ShippingMethod: trade.ShippingMethod(m.ShippingMethod),
		Outcome:        consolidation.Outcome(m.Outcome),
		SelectedCount:  m.SelectedCount,
		EligibleCount:  m.EligibleCount,
		SkippedCount:   m.SkippedCount,
		RefreshFailed:  m.RefreshFailed,
		StartedAt:      m.StartedAt,
		SettledAt:      m.SettledAt,
		Units:          make([]consolidation.UnitResult, len(m.Units)),
	}
	for i := range m.Units {
		unit, err := m.Units[i].ToDomain()
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", m.ID, err)
		}
		run.Units[i] = unit
	}
	return run, nil
}

// ToDomain converts a unit model to a domain UnitResult.
func (m *ConsolidationUnitModel) ToDomain() (consolidation.UnitResult, error) {
	ids := make([]uuid.UUID, 0)
	if m.ItemIDsJSON != "" {
		if err := json.Unmarshal([]byte(m.ItemIDsJSON), &ids); err != nil {
			return consolidation.UnitResult{}, fmt.Errorf("unit %s: decode item_ids: %w", m.ID, err)
		}
	}
	return consolidation.UnitResult{
		MemberID:     m.MemberID,
		CustomerName: m.CustomerName,
		ItemIDs:      ids,
		Status:       consolidation.UnitStatus(m.Status),
		CheckoutID:   m.CheckoutID,
		Reason:       consolidation.FailureReason(m.Reason),
		Message:      m.Message,
	}, nil
}

// FromDomain populates the persistence model from a domain Run.
func (m *ConsolidationRunModel) FromDomain(r *consolidation.Run) {
	m.ID = r.ID
	m.TenantID = r.TenantID
	m.CreatedAt = r.SettledAt
	m.UpdatedAt = r.SettledAt
	m.OperatorID = r.OperatorID
	m.ShippingMethod = string(r.ShippingMethod)
	m.Outcome = string(r.Outcome)
	m.SelectedCount = r.SelectedCount
	m.EligibleCount = r.EligibleCount
	m.SkippedCount = r.SkippedCount
	m.RefreshFailed = r.RefreshFailed
	m.StartedAt = r.StartedAt
	m.SettledAt = r.SettledAt

	m.Units = make([]ConsolidationUnitModel, len(r.Units))
	for i := range r.Units {
		u := &r.Units[i]
		itemIDs := "[]"
		if raw, err := json.Marshal(u.ItemIDs); err == nil && u.ItemIDs != nil {
			itemIDs = string(raw)
		}
		m.Units[i] = ConsolidationUnitModel{
			ID:           uuid.New(),
			RunID:        r.ID,
			Position:     i,
			MemberID:     u.MemberID,
			CustomerName: u.CustomerName,
			ItemIDsJSON:  itemIDs,
			Status:       string(u.Status),
			CheckoutID:   u.CheckoutID,
			Reason:       string(u.Reason),
			Message:      u.Message,
		}
	}
}

// ConsolidationRunModelFromDomain creates a new persistence model from a domain Run.
func ConsolidationRunModelFromDomain(r *consolidation.Run) *ConsolidationRunModel {
	m := &ConsolidationRunModel{}
	m.FromDomain(r)
	return m
}

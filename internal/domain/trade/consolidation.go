package trade

import (
	"strings"

	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/shared"
)

// ShippingMethod is the fulfillment policy chosen for a consolidation run
type ShippingMethod string

const (
	ShippingCourier ShippingMethod = "courier"
	ShippingPostal  ShippingMethod = "postal"
	ShippingPickup  ShippingMethod = "pickup"
)

// ShippingMethods lists every accepted method
var ShippingMethods = []ShippingMethod{ShippingCourier, ShippingPostal, ShippingPickup}

// IsValid checks if the method is a known value
func (m ShippingMethod) IsValid() bool {
	switch m {
	case ShippingCourier, ShippingPostal, ShippingPickup:
		return true
	}
	return false
}

// ParseShippingMethod parses a method name, rejecting unknown values
func ParseShippingMethod(s string) (ShippingMethod, error) {
	m := ShippingMethod(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", shared.NewDomainError("INVALID_SHIPPING_METHOD", "Unknown shipping method: "+s)
	}
	return m, nil
}

// Contact is the resolved delivery identity of a member.
// MessagingID is required to create a checkout; the rest is optional.
type Contact struct {
	MessagingID   string
	ReceiverName  string
	ReceiverPhone string
	PickupPoint   string
}

// HasIdentity returns true if the contact can receive a checkout
func (c Contact) HasIdentity() bool {
	return strings.TrimSpace(c.MessagingID) != ""
}

// ConsolidationUnit is one customer's eligible, selected items for a run
type ConsolidationUnit struct {
	MemberID     string
	CustomerName string
	Contact      Contact
	Items        []OrderItem
}

// ItemIDs returns the ids of the unit's items in order
func (u *ConsolidationUnit) ItemIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(u.Items))
	for i := range u.Items {
		ids[i] = u.Items[i].ID
	}
	return ids
}

// SelectEligible returns the selected items that may be consolidated,
// in list order.
func SelectEligible(items []OrderItem, selected []uuid.UUID) []OrderItem {
	want := make(map[uuid.UUID]struct{}, len(selected))
	for _, id := range selected {
		want[id] = struct{}{}
	}
	eligible := make([]OrderItem, 0, len(selected))
	for i := range items {
		if _, ok := want[items[i].ID]; !ok {
			continue
		}
		if items[i].IsEligibleForConsolidation() {
			eligible = append(eligible, items[i])
		}
	}
	return eligible
}

// PartitionByCustomer splits items into one unit per member id, in
// first-seen order. Every input item lands in exactly one unit.
func PartitionByCustomer(items []OrderItem) []ConsolidationUnit {
	index := make(map[string]int)
	units := make([]ConsolidationUnit, 0)
	for i := range items {
		member := items[i].Customer.MemberID
		idx, ok := index[member]
		if !ok {
			units = append(units, ConsolidationUnit{
				MemberID:     member,
				CustomerName: items[i].Customer.DisplayName,
			})
			idx = len(units) - 1
			index[member] = idx
		}
		units[idx].Items = append(units[idx].Items, items[i])
	}
	return units
}

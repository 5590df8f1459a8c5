package domain

import "github.com/google/uuid"

// LatestForOrder returns the most recently appended broker assignment for the
// given order, or nil when none matches. "Most recently appended" is by Seq,
// not by timestamp, so the tie-break is deterministic even when two attempts
// share an assigned_at instant.
func LatestForOrder(records []BrokerAssignment, orderID uuid.UUID) *BrokerAssignment {
	var latest *BrokerAssignment
	for i := range records {
		record := &records[i]
		if record.OrderID != orderID {
			continue
		}
		if latest == nil || record.Seq > latest.Seq {
			latest = record
		}
	}
	return latest
}

// BrokerFulfilled reports whether a broker placement counts toward order
// fulfillment.
func BrokerFulfilled(record BrokerAssignment) bool {
	return record.Status == InjectionSuccessful
}

// NetworkFulfilled reports whether a network placement counts toward order
// fulfillment. FTD leads additionally require a human-entered domain: a
// completed record without one is still in flight.
func NetworkFulfilled(record NetworkAssignment, leadType LeadType) bool {
	if record.Status != NetworkInjectionCompleted {
		return false
	}
	if leadType == LeadTypeFTD {
		return record.Domain != nil && *record.Domain != ""
	}
	return true
}

// EligibleBrokers returns the enabled brokers this lead can still be placed
// with: everything already attempted (history, not just the active set) and
// everything excluded by the order's filters is removed.
func EligibleBrokers(enabled []uuid.UUID, attempted []uuid.UUID, excluded []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(attempted)+len(excluded))
	for _, id := range attempted {
		seen[id] = struct{}{}
	}
	for _, id := range excluded {
		seen[id] = struct{}{}
	}

	eligible := make([]uuid.UUID, 0, len(enabled))
	for _, id := range enabled {
		if _, ok := seen[id]; ok {
			continue
		}
		eligible = append(eligible, id)
	}
	return eligible
}

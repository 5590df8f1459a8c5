package repository

import (
	"context"

	"leadops_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// FulfillmentRow aggregates one lead type's progress for an order. A lead is
// fulfilled when any of its records for the order is terminal-successful; for
// FTD network records that additionally requires the human-entered domain.
type FulfillmentRow struct {
	LeadType  domain.LeadType
	Leads     int
	Fulfilled int
	Pending   int
	Failed    int
}

// CountOrderFulfillment classifies every lead with history against the order.
// The CASE expressions must stay in sync with domain.BrokerFulfilled and
// domain.NetworkFulfilled.
func (r *Repository) CountOrderFulfillment(ctx context.Context, orderID uuid.UUID) ([]FulfillmentRow, error) {
	rows, err := r.pool.Query(ctx, `
		WITH order_records AS (
			SELECT lead_id,
				injection_status = 'successful' AS fulfilled,
				injection_status = 'pending' AS pending,
				injection_status = 'failed' AS failed
			FROM lead_broker_assignments
			WHERE order_id = $1
			UNION ALL
			SELECT n.lead_id,
				(n.injection_status = 'completed'
					AND (l.lead_type <> 'ftd' OR COALESCE(n.domain, '') <> '')) AS fulfilled,
				(n.injection_status = 'pending'
					OR (n.injection_status = 'completed'
						AND l.lead_type = 'ftd'
						AND COALESCE(n.domain, '') = '')) AS pending,
				n.injection_status = 'failed' AS failed
			FROM lead_network_assignments n
			JOIN leads l ON l.id = n.lead_id
			WHERE n.order_id = $1
		),
		order_leads AS (
			SELECT l.lead_type,
				BOOL_OR(s.fulfilled) AS fulfilled,
				BOOL_OR(s.pending) AS pending,
				BOOL_OR(s.failed) AS failed
			FROM order_records s
			JOIN leads l ON l.id = s.lead_id
			GROUP BY l.id, l.lead_type
		)
		SELECT lead_type,
			COUNT(*) AS leads,
			COUNT(*) FILTER (WHERE fulfilled) AS fulfilled,
			COUNT(*) FILTER (WHERE pending AND NOT fulfilled) AS pending,
			COUNT(*) FILTER (WHERE failed AND NOT fulfilled AND NOT pending) AS failed
		FROM order_leads
		GROUP BY lead_type
		ORDER BY lead_type
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]FulfillmentRow, 0)
	for rows.Next() {
		var (
			row      FulfillmentRow
			leadType string
		)
		if err := rows.Scan(&leadType, &row.Leads, &row.Fulfilled, &row.Pending, &row.Failed); err != nil {
			return nil, err
		}
		row.LeadType = domain.LeadType(leadType)
		results = append(results, row)
	}

	return results, rows.Err()
}

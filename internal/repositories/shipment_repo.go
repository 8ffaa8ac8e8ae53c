package repositories

import (
	"context"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ShipmentRepository interface {
	// Create persists the shipment with its items, shared costs and allocation rows in one transaction
	Create(ctx context.Context, shipment *models.Shipment) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Shipment, error)
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Shipment, int, error)
	// Finalize copies each item's landed cost per unit onto its product and marks the shipment finalized.
	// It returns false when the shipment was not in draft.
	Finalize(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
}

type shipmentRepo struct {
	db DBTX
}

func NewShipmentRepo(db DBTX) ShipmentRepository {
	return &shipmentRepo{db: db}
}

const shipmentColumns = `id, tenant_id, reference, shipment_date, allocation_method, base_currency, exchange_rate, total_base_cost,
	total_shared_cost, grand_total_landed_cost, status, notes, finalized_at, created_by, created_at, updated_at`

func scanShipment(row pgx.Row) (*models.Shipment, error) {
	s := &models.Shipment{}
	err := row.Scan(&s.ID, &s.TenantID, &s.Reference, &s.ShipmentDate, &s.Method, &s.BaseCurrency, &s.ExchangeRate,
		&s.TotalBaseCost, &s.TotalSharedCost, &s.GrandTotal, &s.Status, &s.Notes, &s.FinalizedAt, &s.CreatedBy,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *shipmentRepo) Create(ctx context.Context, s *models.Shipment) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO shipments (id, tenant_id, reference, shipment_date, allocation_method, base_currency, exchange_rate,
				total_base_cost, total_shared_cost, grand_total_landed_cost, status, notes, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`,
			s.ID, s.TenantID, s.Reference, s.ShipmentDate, s.Method, s.BaseCurrency, s.ExchangeRate, s.TotalBaseCost,
			s.TotalSharedCost, s.GrandTotal, s.Status, s.Notes, s.CreatedBy)
		if err != nil {
			return err
		}

		for _, item := range s.Items {
			item.ShipmentID = s.ID
			_, err := tx.Exec(ctx, `
				INSERT INTO shipment_items (id, shipment_id, product_id, quantity, unit_cost, weight, total_item_cost,
					allocated_shared_cost, total_landed_cost, landed_cost_per_unit, percentage_share)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
				item.ID, item.ShipmentID, item.ProductID, item.Quantity, item.UnitCost, item.Weight, item.TotalItemCost,
				item.AllocatedSharedCost, item.TotalLandedCost, item.LandedCostPerUnit, item.PercentageShare)
			if err != nil {
				return err
			}
		}

		for _, sc := range s.SharedCosts {
			sc.ShipmentID = s.ID
			_, err := tx.Exec(ctx, `
				INSERT INTO shipment_shared_costs (id, shipment_id, category, description, amount)
				VALUES ($1, $2, $3, $4, $5)`,
				sc.ID, sc.ShipmentID, sc.Category, sc.Description, sc.Amount)
			if err != nil {
				return err
			}
		}

		for _, a := range s.Allocations {
			_, err := tx.Exec(ctx, `
				INSERT INTO shared_cost_allocations (id, shared_cost_id, shipment_item_id, amount, is_manual)
				VALUES ($1, $2, $3, $4, $5)`,
				a.ID, a.SharedCostID, a.ShipmentItemID, a.Amount, a.IsManual)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *shipmentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Shipment, error) {
	s, err := scanShipment(r.db.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT id, shipment_id, product_id, quantity, unit_cost, weight, total_item_cost, allocated_shared_cost,
			total_landed_cost, landed_cost_per_unit, percentage_share
		FROM shipment_items WHERE shipment_id = $1 ORDER BY total_item_cost DESC, id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		item := &models.ShipmentItem{}
		if err := rows.Scan(&item.ID, &item.ShipmentID, &item.ProductID, &item.Quantity, &item.UnitCost, &item.Weight,
			&item.TotalItemCost, &item.AllocatedSharedCost, &item.TotalLandedCost, &item.LandedCostPerUnit,
			&item.PercentageShare); err != nil {
			rows.Close()
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `SELECT id, shipment_id, category, description, amount FROM shipment_shared_costs WHERE shipment_id = $1 ORDER BY category, id`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		sc := &models.SharedCost{}
		if err := rows.Scan(&sc.ID, &sc.ShipmentID, &sc.Category, &sc.Description, &sc.Amount); err != nil {
			rows.Close()
			return nil, err
		}
		s.SharedCosts = append(s.SharedCosts, sc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = r.db.Query(ctx, `
		SELECT a.id, a.shared_cost_id, a.shipment_item_id, a.amount, a.is_manual
		FROM shared_cost_allocations a
		JOIN shipment_shared_costs sc ON sc.id = a.shared_cost_id
		WHERE sc.shipment_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		a := &models.SharedCostAllocation{}
		if err := rows.Scan(&a.ID, &a.SharedCostID, &a.ShipmentItemID, &a.Amount, &a.IsManual); err != nil {
			return nil, err
		}
		s.Allocations = append(s.Allocations, a)
	}
	return s, rows.Err()
}

func (r *shipmentRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Shipment, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM shipments WHERE tenant_id = $1`, tenantID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE tenant_id = $1
		ORDER BY shipment_date DESC, created_at DESC LIMIT $2 OFFSET $3`, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	shipments := []*models.Shipment{}
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, 0, err
		}
		shipments = append(shipments, s)
	}
	return shipments, total, rows.Err()
}

func (r *shipmentRepo) Finalize(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	finalized := false
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE shipments SET status = 'finalized', finalized_at = NOW(), updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2 AND status = 'draft'`, tenantID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `
			UPDATE products p
			SET landed_cost = si.landed_cost_per_unit, updated_at = NOW()
			FROM shipment_items si
			WHERE si.shipment_id = $1 AND p.id = si.product_id AND p.tenant_id = $2`, id, tenantID)
		if err != nil {
			return err
		}
		finalized = true
		return nil
	})
	return finalized, err
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/guttosm/casebreak-service/internal/domain/model"
	"github.com/guttosm/casebreak-service/internal/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var forUpdate = clause.Locking{Strength: "UPDATE"}

func wrap(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicateKey
	}
	return fmt.Errorf("%s: %w", op, err)
}

type productRepo struct{ db *DB }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	row := productToRow(p)
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		return wrap("insert product", err)
	}
	return nil
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.inTx(ctx, func(tx *gorm.DB) error {
		var current productRow
		if err := tx.Clauses(forUpdate).Take(&current, "id = ?", p.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repository.ErrNotFound
			}
			return wrap("lock product", err)
		}

		row := productToRow(p)
		row.UpdatedAt = time.Now().UTC()
		if err := tx.Model(&productRow{ID: p.ID}).
			Select("sku", "title", "case_price", "package", "is_case_breakable", "updated_at").
			Updates(&row).Error; err != nil {
			return wrap("update product", err)
		}

		if err := r.syncUnit(tx, row.Unit, p.ID); err != nil {
			return err
		}

		var fresh productRow
		if err := tx.Preload("Unit").Take(&fresh, "id = ?", p.ID).Error; err != nil {
			return wrap("reload product", err)
		}
		*p = *fresh.toModel()
		return nil
	})
}

// syncUnit creates, refreshes or deletes the unit row. Stock of an existing row is not touched.
func (r *productRepo) syncUnit(tx *gorm.DB, unit *unitProductRow, productID string) error {
	if unit == nil {
		if err := tx.Delete(&unitProductRow{}, "product_id = ?", productID).Error; err != nil {
			return wrap("delete unit product", err)
		}
		return nil
	}

	var existing unitProductRow
	err := tx.Clauses(forUpdate).Take(&existing, "product_id = ?", productID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Create(unit).Error; err != nil {
			return wrap("insert unit product", err)
		}
		return nil
	case err != nil:
		return wrap("lock unit product", err)
	}

	if err := tx.Model(&unitProductRow{ProductID: productID}).
		Select("sku", "unit_price", "package").
		Updates(unit).Error; err != nil {
		return wrap("update unit product", err)
	}
	return nil
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var row productRow
	err := r.db.conn(ctx).Preload("Unit").Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find product", err)
	}
	return row.toModel(), nil
}

type inventoryRepo struct{ db *DB }

func (r *inventoryRepo) missingReason(tx *gorm.DB, productID string) error {
	var n int64
	if err := tx.Model(&productRow{}).Where("id = ?", productID).Count(&n).Error; err != nil {
		return wrap("count product", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrNoUnitInventory
}

func (r *inventoryRepo) find(tx *gorm.DB, productID string, lock bool) (*unitProductRow, error) {
	q := tx
	if lock {
		q = tx.Clauses(forUpdate)
	}
	var u unitProductRow
	err := q.Take(&u, "product_id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, r.missingReason(tx, productID)
	}
	if err != nil {
		return nil, wrap("read unit product", err)
	}
	return &u, nil
}

func (r *inventoryRepo) AvailableStock(ctx context.Context, productID string) (int, error) {
	u, err := r.find(r.db.conn(ctx), productID, false)
	if err != nil {
		return 0, err
	}
	return u.AvailableStock, nil
}

func (r *inventoryRepo) Reserve(ctx context.Context, productID string, requested int) (int, error) {
	var reserved int
	err := r.db.inTx(ctx, func(tx *gorm.DB) error {
		u, err := r.find(tx, productID, true)
		if err != nil {
			return err
		}
		reserved = min(u.AvailableStock, requested)
		if reserved == 0 {
			return nil
		}
		return tx.Model(&unitProductRow{}).
			Where("product_id = ?", productID).
			Update("available_stock", gorm.Expr("available_stock - ?", reserved)).Error
	})
	if err != nil {
		return 0, err
	}
	return reserved, nil
}

func (r *inventoryRepo) Credit(ctx context.Context, productID string, quantity int) (int, error) {
	var u unitProductRow
	tx := r.db.conn(ctx)
	res := tx.Model(&u).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "available_stock"}}}).
		Where("product_id = ?", productID).
		Update("available_stock", gorm.Expr("available_stock + ?", quantity))
	if res.Error != nil {
		return 0, wrap("credit stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, r.missingReason(tx, productID)
	}
	return u.AvailableStock, nil
}

type cartRepo struct{ db *DB }

func orderedLines(db *gorm.DB) *gorm.DB { return db.Order("position") }

func (r *cartRepo) GetByUser(ctx context.Context, userID string) (*model.Cart, error) {
	var row cartRow
	err := r.db.conn(ctx).Preload("Lines", orderedLines).Take(&row, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find cart", err)
	}
	return row.toModel(), nil
}

func (r *cartRepo) SetLine(ctx context.Context, userID string, line model.CartLine) (*model.Cart, error) {
	var out *model.Cart
	err := r.db.inTx(ctx, func(tx *gorm.DB) error {
		draft := cartRow{ID: uuid.NewString(), UserID: userID, UpdatedAt: time.Now().UTC()}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
		}).Omit("Lines").Create(&draft).Error; err != nil {
			return wrap("upsert cart", err)
		}
		var cart cartRow
		if err := tx.Clauses(forUpdate).Take(&cart, "user_id = ?", userID).Error; err != nil {
			return wrap("lock cart", err)
		}

		if line.CaseQuantity == 0 && line.UnitQuantity == 0 {
			if err := tx.Delete(&cartLineRow{}, "cart_id = ? AND product_id = ?", cart.ID, line.ProductID).Error; err != nil {
				return wrap("delete cart line", err)
			}
		} else {
			var position int64
			if err := tx.Model(&cartLineRow{}).Where("cart_id = ?", cart.ID).Count(&position).Error; err != nil {
				return wrap("count cart lines", err)
			}
			row := cartLineRow{
				CartID:       cart.ID,
				ProductID:    line.ProductID,
				Position:     int(position),
				CaseQuantity: line.CaseQuantity,
				UnitQuantity: line.UnitQuantity,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"case_quantity", "unit_quantity"}),
			}).Create(&row).Error; err != nil {
				return wrap("upsert cart line", err)
			}
		}

		var fresh cartRow
		if err := tx.Preload("Lines", orderedLines).Take(&fresh, "id = ?", cart.ID).Error; err != nil {
			return wrap("reload cart", err)
		}
		out = fresh.toModel()
		return nil
	})
	return out, err
}

func (r *cartRepo) Clear(ctx context.Context, cartID string) (int64, error) {
	res := r.db.conn(ctx).Delete(&cartLineRow{}, "cart_id = ?", cartID)
	if res.Error != nil {
		return 0, wrap("clear cart", res.Error)
	}
	return res.RowsAffected, nil
}

type purchaseRepo struct{ db *DB }

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("position") }

func (r *purchaseRepo) Create(ctx context.Context, p *model.PurchaseRecord) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now().UTC()
	}
	row := purchaseToRow(p)
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		return wrap("insert purchase", err)
	}
	return nil
}

func (r *purchaseRepo) FindByID(ctx context.Context, id string) (*model.PurchaseRecord, error) {
	var row purchaseRow
	err := r.db.conn(ctx).Preload("Items", orderedItems).Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find purchase", err)
	}
	return row.toModel(), nil
}

func (r *purchaseRepo) List(ctx context.Context, f model.PurchaseFilter) ([]model.PurchaseRecord, error) {
	q := r.db.conn(ctx).Preload("Items", orderedItems).Order("purchased_at DESC")
	if f.From != nil {
		q = q.Where("purchased_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("purchased_at <= ?", *f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []purchaseRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list purchases", err)
	}
	out := make([]model.PurchaseRecord, len(rows))
	for i, row := range rows {
		out[i] = *row.toModel()
	}
	return out, nil
}

func (r *purchaseRepo) UpdateStatus(ctx context.Context, id string, status model.PurchaseStatus) (*model.PurchaseRecord, error) {
	res := r.db.conn(ctx).Model(&purchaseRow{}).Where("id = ?", id).Update("status", string(status))
	if res.Error != nil {
		return nil, wrap("update purchase status", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.FindByID(ctx, id)
}

type breakCaseRepo struct{ db *DB }

func (r *breakCaseRepo) Create(ctx context.Context, req *model.BreakCaseRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Status == "" {
		req.Status = model.RequestStatusOpen
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	row := breakCaseRow{
		ID:          req.ID,
		ProductID:   req.ProductID,
		Quantity:    req.Quantity,
		Status:      string(req.Status),
		PurchaseID:  req.PurchaseID,
		CreatedAt:   req.CreatedAt,
		CompletedAt: req.CompletedAt,
	}
	if err := r.db.conn(ctx).Create(&row).Error; err != nil {
		return wrap("insert break-case request", err)
	}
	return nil
}

func (r *breakCaseRepo) FindByID(ctx context.Context, id string) (*model.BreakCaseRequest, error) {
	var row breakCaseRow
	err := r.db.conn(ctx).Take(&row, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrap("find break-case request", err)
	}
	req := row.toModel()
	return &req, nil
}

func (r *breakCaseRepo) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	tx := r.db.conn(ctx)
	res := tx.Model(&breakCaseRow{}).
		Where("id = ? AND status = ?", id, string(model.RequestStatusOpen)).
		Updates(map[string]interface{}{
			"status":       string(model.RequestStatusCompleted),
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return wrap("complete break-case request", res.Error)
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var n int64
	if err := tx.Model(&breakCaseRow{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return wrap("count break-case request", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return repository.ErrConflict
}

func (r *breakCaseRepo) List(ctx context.Context, f model.BreakCaseFilter) ([]model.BreakCaseRequest, error) {
	q := r.db.conn(ctx).Order("created_at DESC")
	if f.From != nil {
		q = q.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("created_at <= ?", *f.To)
	}
	if f.Status != "" {
		q = q.Where("status = ?", string(f.Status))
	}

	var rows []breakCaseRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrap("list break-case requests", err)
	}
	out := make([]model.BreakCaseRequest, len(rows))
	for i, row := range rows {
		out[i] = row.toModel()
	}
	return out, nil
}

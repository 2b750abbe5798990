package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Aeomar999/POS-sub000/internal/domain"
	"github.com/Aeomar999/POS-sub000/internal/store"
	"github.com/Aeomar999/POS-sub000/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const productColumns = `id, name, sku, category, price_cents, cost_price_cents, stock_quantity, low_stock_threshold, active, created_at, updated_at`

func scanProduct(row interface{ Scan(dest ...any) error }) (domain.Product, error) {
	var p domain.Product
	var sku sql.NullString
	err := row.Scan(&p.ID, &p.Name, &sku, &p.Category, &p.PriceCents, &p.CostPriceCents,
		&p.StockQuantity, &p.LowStockThreshold, &p.Active, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	p.SKU = sku.String
	return p, nil
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE active = true AND stock_quantity <= low_stock_threshold
		ORDER BY stock_quantity, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 16)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (s *Store) GetProductByID(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1
	`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	if len(ids) == 0 {
		return map[string]domain.Product{}, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.PriceCents < 0 || product.StockQuantity < 0 || product.LowStockThreshold < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, ok := domain.ParseCategory(string(product.Category)); !ok {
		return nil, store.ErrInvalidInput
	}

	if product.ID == "" {
		product.ID = xid.New("prd")
	}
	product.Active = true
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, category, price_cents, cost_price_cents, stock_quantity, low_stock_threshold, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, product.ID, product.Name, nullIfEmpty(product.SKU), product.Category, product.PriceCents,
		product.CostPriceCents, product.StockQuantity, product.LowStockThreshold, product.Active,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.Name == "" || product.PriceCents < 0 || product.StockQuantity < 0 || product.LowStockThreshold < 0 {
		return nil, store.ErrInvalidInput
	}
	if _, ok := domain.ParseCategory(string(product.Category)); !ok {
		return nil, store.ErrInvalidInput
	}

	product.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, sku = $3, category = $4, price_cents = $5, cost_price_cents = $6,
		    stock_quantity = $7, low_stock_threshold = $8, active = $9, updated_at = $10
		WHERE id = $1
	`, product.ID, product.Name, nullIfEmpty(product.SKU), product.Category, product.PriceCents,
		product.CostPriceCents, product.StockQuantity, product.LowStockThreshold, product.Active,
		product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetProductByID(ctx, product.ID)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const serviceColumns = `id, name, description, price_cents, duration, active, created_at, updated_at`

func scanService(row interface{ Scan(dest ...any) error }) (domain.Service, error) {
	var svc domain.Service
	var description sql.NullString
	var duration sql.NullString
	err := row.Scan(&svc.ID, &svc.Name, &description, &svc.PriceCents, &duration,
		&svc.Active, &svc.CreatedAt, &svc.UpdatedAt)
	if err != nil {
		return domain.Service{}, err
	}
	svc.Description = description.String
	svc.Duration = duration.String
	return svc, nil
}

func (s *Store) ListServices(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	services := make([]domain.Service, 0, 32)
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		services = append(services, svc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return services, nil
}

func (s *Store) GetServiceByID(ctx context.Context, id string) (*domain.Service, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+serviceColumns+`
		FROM services
		WHERE id = $1
	`, id)
	svc, err := scanService(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &svc, nil
}

func (s *Store) CreateService(ctx context.Context, svc domain.Service) (*domain.Service, error) {
	if svc.Name == "" || svc.PriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	if svc.ID == "" {
		svc.ID = xid.New("svc")
	}
	svc.Active = true
	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO services (id, name, description, price_cents, duration, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, svc.ID, svc.Name, nullIfEmpty(svc.Description), svc.PriceCents, nullIfEmpty(svc.Duration),
		svc.Active, svc.CreatedAt, svc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	created := svc
	return &created, nil
}

func (s *Store) UpdateService(ctx context.Context, svc domain.Service) (*domain.Service, error) {
	if svc.Name == "" || svc.PriceCents < 0 {
		return nil, store.ErrInvalidInput
	}

	svc.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE services
		SET name = $2, description = $3, price_cents = $4, duration = $5, active = $6, updated_at = $7
		WHERE id = $1
	`, svc.ID, svc.Name, nullIfEmpty(svc.Description), svc.PriceCents, nullIfEmpty(svc.Duration),
		svc.Active, svc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetServiceByID(ctx, svc.ID)
}

func (s *Store) DeleteService(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountServices(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM services`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// CreateSale writes the sale header, its items and the stock decrements in
// one serializable transaction. The conditional UPDATE rejects oversell
// without a prior SELECT FOR UPDATE round trip.
func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if len(sale.Items) == 0 || sale.SaleNumber == "" {
		return nil, store.ErrInvalidInput
	}
	for _, item := range sale.Items {
		if item.Quantity < 1 || item.Name == "" || item.UnitPriceCents < 0 {
			return nil, store.ErrInvalidInput
		}
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	if sale.Status == "" {
		sale.Status = domain.SaleStatusCompleted
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (id, sale_number, staff_id, customer_name, customer_phone,
			subtotal_cents, tax_cents, discount_cents, total_cents, status, notes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, sale.ID, sale.SaleNumber, nullIfEmpty(sale.StaffID), nullIfEmpty(sale.CustomerName),
		nullIfEmpty(sale.CustomerPhone), sale.SubtotalCents, sale.TaxCents, sale.DiscountCents,
		sale.TotalCents, sale.Status, nullIfEmpty(sale.Notes), sale.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	for i := range sale.Items {
		item := &sale.Items[i]
		if item.ID == "" {
			item.ID = xid.New("item")
		}
		item.SaleID = sale.ID
		item.TotalCents = int64(item.Quantity) * item.UnitPriceCents

		if item.ProductID != "" {
			res, err := tx.ExecContext(ctx, `
				UPDATE products
				SET stock_quantity = stock_quantity - $2, updated_at = now()
				WHERE id = $1 AND stock_quantity >= $2
			`, item.ProductID, item.Quantity)
			if err != nil {
				return nil, err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return nil, err
			}
			if affected == 0 {
				exists, err := s.productExists(ctx, tx, item.ProductID)
				if err != nil {
					return nil, err
				}
				if !exists {
					return nil, store.ErrNotFound
				}
				return nil, store.ErrInsufficientStock
			}
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO sale_items (id, sale_id, product_id, service_id, name, quantity, unit_price_cents, total_cents)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, item.ID, item.SaleID, nullIfEmpty(item.ProductID), nullIfEmpty(item.ServiceID),
			item.Name, item.Quantity, item.UnitPriceCents, item.TotalCents)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := sale
	return &created, nil
}

const saleColumns = `id, sale_number, staff_id, customer_name, customer_phone, subtotal_cents, tax_cents, discount_cents, total_cents, status, notes, created_at`

func scanSale(row interface{ Scan(dest ...any) error }) (domain.Sale, error) {
	var sale domain.Sale
	var staffID, customerName, customerPhone, notes sql.NullString
	err := row.Scan(&sale.ID, &sale.SaleNumber, &staffID, &customerName, &customerPhone,
		&sale.SubtotalCents, &sale.TaxCents, &sale.DiscountCents, &sale.TotalCents,
		&sale.Status, &notes, &sale.CreatedAt)
	if err != nil {
		return domain.Sale{}, err
	}
	sale.StaffID = staffID.String
	sale.CustomerName = customerName.String
	sale.CustomerPhone = customerPhone.String
	sale.Notes = notes.String
	return sale, nil
}

func (s *Store) ListSales(ctx context.Context, since time.Time, limit int) ([]domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		ORDER BY created_at DESC, id DESC
	`
	args := []any{nullTimeValue(since)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0, 64)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) GetSaleByID(ctx context.Context, id string) (*domain.Sale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE id = $1
	`, id)
	sale, err := scanSale(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	sales := []domain.Sale{sale}
	if err := s.attachItems(ctx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

func (s *Store) UpdateSale(ctx context.Context, id string, status string, notes *string) (*domain.Sale, error) {
	if status != "" && !domain.IsSaleStatus(status) {
		return nil, store.ErrInvalidInput
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET status = COALESCE(NULLIF($2, ''), status),
		    notes = COALESCE($3, notes)
		WHERE id = $1
	`, id, status, notes)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetSaleByID(ctx, id)
}

// attachItems loads the line items for each sale in one query and stitches
// them back onto the parent rows.
func (s *Store) attachItems(ctx context.Context, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i, sale := range sales {
		ids[i] = sale.ID
		index[sale.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sale_id, product_id, service_id, name, quantity, unit_price_cents, total_cents
		FROM sale_items
		WHERE sale_id = ANY($1)
		ORDER BY sale_id, id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.SaleItem
		var productID, serviceID sql.NullString
		if err := rows.Scan(&item.ID, &item.SaleID, &productID, &serviceID, &item.Name,
			&item.Quantity, &item.UnitPriceCents, &item.TotalCents); err != nil {
			return err
		}
		item.ProductID = productID.String
		item.ServiceID = serviceID.String
		if i, ok := index[item.SaleID]; ok {
			sales[i].Items = append(sales[i].Items, item)
		}
	}
	return rows.Err()
}

const staffColumns = `id, name, username, password_hash, role, active, created_at, updated_at`

func scanStaff(row interface{ Scan(dest ...any) error }) (domain.StaffUser, error) {
	var member domain.StaffUser
	err := row.Scan(&member.ID, &member.Name, &member.Username, &member.PasswordHash,
		&member.Role, &member.Active, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return domain.StaffUser{}, err
	}
	return member, nil
}

func (s *Store) ListStaff(ctx context.Context) ([]domain.StaffUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	staff := make([]domain.StaffUser, 0, 16)
	for rows.Next() {
		member, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, member)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return staff, nil
}

func (s *Store) GetStaffByID(ctx context.Context, id string) (*domain.StaffUser, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users
		WHERE id = $1
	`, id)
	member, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (s *Store) GetStaffByUsername(ctx context.Context, username string) (*domain.StaffUser, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+staffColumns+`
		FROM staff_users
		WHERE username = $1
	`, username)
	member, err := scanStaff(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (s *Store) CreateStaff(ctx context.Context, staff domain.StaffUser) (*domain.StaffUser, error) {
	if staff.Username == "" || staff.Name == "" || staff.PasswordHash == "" {
		return nil, store.ErrInvalidInput
	}
	if _, ok := domain.ParseRole(string(staff.Role)); !ok {
		return nil, store.ErrInvalidInput
	}

	if staff.ID == "" {
		staff.ID = xid.New("stf")
	}
	now := time.Now().UTC()
	staff.CreatedAt = now
	staff.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staff_users (id, name, username, password_hash, role, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, staff.ID, staff.Name, staff.Username, staff.PasswordHash, staff.Role, staff.Active,
		staff.CreatedAt, staff.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicate
		}
		return nil, err
	}

	created := staff
	return &created, nil
}

func (s *Store) UpdateStaff(ctx context.Context, staff domain.StaffUser) (*domain.StaffUser, error) {
	if _, ok := domain.ParseRole(string(staff.Role)); !ok {
		return nil, store.ErrInvalidInput
	}

	staff.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE staff_users
		SET name = $2, password_hash = $3, role = $4, active = $5, updated_at = $6
		WHERE id = $1
	`, staff.ID, staff.Name, staff.PasswordHash, staff.Role, staff.Active, staff.UpdatedAt)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	return s.GetStaffByID(ctx, staff.ID)
}

func (s *Store) DeleteStaff(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM staff_users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, entry.ID, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType,
		nullIfEmpty(entry.EntityID), nullIfEmpty(entry.Detail), entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	query := `
		SELECT id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at DESC, id DESC
	`
	args := []any{from, to}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, 64)
	for rows.Next() {
		var entry domain.AuditLog
		var entityID, detail sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ActorUsername, &entry.ActorRole, &entry.Action,
			&entry.EntityType, &entityID, &detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.EntityID = entityID.String
		entry.Detail = detail.String
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) productExists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var exists bool
	err := tx.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTimeValue(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}

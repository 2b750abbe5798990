package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Aeomar999/POS-sub000/internal/cache"
	"github.com/Aeomar999/POS-sub000/internal/domain"
	"github.com/Aeomar999/POS-sub000/internal/report"
	"github.com/Aeomar999/POS-sub000/internal/store"
	"github.com/Aeomar999/POS-sub000/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

const saleNumberAttempts = 5

type Service struct {
	repo      store.Repository
	reports   *report.Engine
	cache     cache.ReportCache
	reportTTL time.Duration
}

func New(repo store.Repository, reports *report.Engine, cacheStore cache.ReportCache, reportTTL time.Duration) *Service {
	if cacheStore == nil {
		cacheStore = cache.NoopReportCache{}
	}
	if reportTTL <= 0 {
		reportTTL = time.Minute
	}

	return &Service{
		repo:      repo,
		reports:   reports,
		cache:     cacheStore,
		reportTTL: reportTTL,
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) ListLowStockProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListLowStockProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	product, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))

	if req.Name == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	category, ok := domain.ParseCategory(strings.TrimSpace(req.Category))
	if !ok {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.PriceCents < 0 || req.CostPriceCents < 0 || req.StockQuantity < 0 || req.LowStockThreshold < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateProduct(ctx, domain.Product{
		Name:              req.Name,
		SKU:               req.SKU,
		Category:          category,
		PriceCents:        req.PriceCents,
		CostPriceCents:    req.CostPriceCents,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: req.LowStockThreshold,
		Active:            true,
	})
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product.create", "product", created.ID, created.Name)
	s.invalidateReports(ctx)
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	existing, err := s.repo.GetProductByID(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	product := *existing
	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.SKU != nil {
		product.SKU = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Category != nil {
		category, ok := domain.ParseCategory(strings.TrimSpace(*req.Category))
		if !ok {
			return domain.Product{}, store.ErrInvalidInput
		}
		product.Category = category
	}
	if req.PriceCents != nil {
		product.PriceCents = *req.PriceCents
	}
	if req.CostPriceCents != nil {
		product.CostPriceCents = *req.CostPriceCents
	}
	if req.StockQuantity != nil {
		product.StockQuantity = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	updated, err := s.repo.UpdateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}

	s.logAudit(ctx, "product.update", "product", updated.ID, updated.Name)
	s.invalidateReports(ctx)
	return *updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "product.delete", "product", id, "")
	s.invalidateReports(ctx)
	return nil
}

func (s *Service) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.repo.ListServices(ctx)
}

func (s *Service) GetService(ctx context.Context, id string) (domain.Service, error) {
	svc, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return domain.Service{}, err
	}
	return *svc, nil
}

func (s *Service) CreateService(ctx context.Context, req domain.ServiceCreateRequest) (domain.Service, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents < 0 {
		return domain.Service{}, store.ErrInvalidInput
	}

	created, err := s.repo.CreateService(ctx, domain.Service{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		PriceCents:  req.PriceCents,
		Duration:    strings.TrimSpace(req.Duration),
		Active:      true,
	})
	if err != nil {
		return domain.Service{}, err
	}

	s.logAudit(ctx, "service.create", "service", created.ID, created.Name)
	s.invalidateReports(ctx)
	return *created, nil
}

func (s *Service) UpdateService(ctx context.Context, id string, req domain.ServiceUpdateRequest) (domain.Service, error) {
	existing, err := s.repo.GetServiceByID(ctx, id)
	if err != nil {
		return domain.Service{}, err
	}

	svc := *existing
	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = strings.TrimSpace(*req.Description)
	}
	if req.PriceCents != nil {
		svc.PriceCents = *req.PriceCents
	}
	if req.Duration != nil {
		svc.Duration = strings.TrimSpace(*req.Duration)
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}

	updated, err := s.repo.UpdateService(ctx, svc)
	if err != nil {
		return domain.Service{}, err
	}

	s.logAudit(ctx, "service.update", "service", updated.ID, updated.Name)
	s.invalidateReports(ctx)
	return *updated, nil
}

func (s *Service) DeleteService(ctx context.Context, id string) error {
	if err := s.repo.DeleteService(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "service.delete", "service", id, "")
	s.invalidateReports(ctx)
	return nil
}

// CreateSale validates the cart, fills name snapshots from the catalog, and
// persists the sale atomically. Sale numbers are regenerated on collision
// instead of trusting the random suffix.
func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.Sale, error) {
	if len(req.Items) == 0 {
		return domain.Sale{}, fmt.Errorf("%w: cart items required", store.ErrInvalidInput)
	}
	if req.DiscountCents < 0 {
		return domain.Sale{}, store.ErrInvalidInput
	}

	productIDs := make([]string, 0, len(req.Items))
	for _, input := range req.Items {
		if input.Quantity < 1 {
			return domain.Sale{}, store.ErrInvalidInput
		}
		if input.ProductID != "" && input.ServiceID != "" {
			return domain.Sale{}, store.ErrInvalidInput
		}
		if input.ProductID != "" {
			productIDs = append(productIDs, input.ProductID)
		}
	}

	products, err := s.repo.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return domain.Sale{}, err
	}

	items := make([]domain.SaleItem, 0, len(req.Items))
	subtotal := int64(0)
	for _, input := range req.Items {
		name := strings.TrimSpace(input.Name)
		if input.ProductID != "" {
			product, exists := products[input.ProductID]
			if !exists {
				return domain.Sale{}, store.ErrNotFound
			}
			if name == "" {
				name = product.Name
			}
		}
		if input.ServiceID != "" && name == "" {
			svc, err := s.repo.GetServiceByID(ctx, input.ServiceID)
			if err != nil {
				return domain.Sale{}, err
			}
			name = svc.Name
		}
		if name == "" || input.UnitPriceCents < 0 {
			return domain.Sale{}, store.ErrInvalidInput
		}

		lineTotal := int64(input.Quantity) * input.UnitPriceCents
		subtotal += lineTotal
		items = append(items, domain.SaleItem{
			ProductID:      input.ProductID,
			ServiceID:      input.ServiceID,
			Name:           name,
			Quantity:       input.Quantity,
			UnitPriceCents: input.UnitPriceCents,
			TotalCents:     lineTotal,
		})
	}

	if req.DiscountCents > subtotal {
		return domain.Sale{}, fmt.Errorf("%w: discount exceeds subtotal", store.ErrInvalidInput)
	}

	actor, _ := ActorFromContext(ctx)
	sale := domain.Sale{
		StaffID:       actor.StaffID,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		SubtotalCents: subtotal,
		TaxCents:      0,
		DiscountCents: req.DiscountCents,
		TotalCents:    subtotal - req.DiscountCents,
		Status:        domain.SaleStatusCompleted,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     time.Now().UTC(),
		Items:         items,
	}

	var created *domain.Sale
	for attempt := 0; attempt < saleNumberAttempts; attempt++ {
		sale.SaleNumber = xid.SaleNumber(sale.CreatedAt)
		created, err = s.repo.CreateSale(ctx, sale)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return domain.Sale{}, err
		}
	}
	if err != nil {
		return domain.Sale{}, fmt.Errorf("allocate sale number: %w", err)
	}

	s.logAudit(ctx, "sale.create", "sale", created.ID, created.SaleNumber)
	s.invalidateReports(ctx)
	return *created, nil
}

func (s *Service) ListSales(ctx context.Context, limit int) ([]domain.Sale, error) {
	return s.repo.ListSales(ctx, time.Time{}, limit)
}

func (s *Service) GetSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, err := s.repo.GetSaleByID(ctx, id)
	if err != nil {
		return domain.Sale{}, err
	}
	return *sale, nil
}

func (s *Service) UpdateSale(ctx context.Context, id string, req domain.SaleUpdateRequest) (domain.Sale, error) {
	status := ""
	if req.Status != nil {
		status = *req.Status
		if !domain.IsSaleStatus(status) {
			return domain.Sale{}, store.ErrInvalidInput
		}
	}

	updated, err := s.repo.UpdateSale(ctx, id, status, req.Notes)
	if err != nil {
		return domain.Sale{}, err
	}

	s.logAudit(ctx, "sale.update", "sale", updated.ID, updated.Status)
	s.invalidateReports(ctx)
	return *updated, nil
}

func (s *Service) ListStaff(ctx context.Context) ([]domain.StaffUser, error) {
	return s.repo.ListStaff(ctx)
}

func (s *Service) CreateStaff(ctx context.Context, req domain.StaffCreateRequest) (domain.StaffUser, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	if req.Name == "" || req.Username == "" {
		return domain.StaffUser{}, store.ErrInvalidInput
	}
	role, ok := domain.ParseRole(strings.TrimSpace(req.Role))
	if !ok {
		return domain.StaffUser{}, store.ErrInvalidInput
	}
	if len(req.Password) < 8 {
		return domain.StaffUser{}, fmt.Errorf("%w: password must be at least 8 characters", store.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.StaffUser{}, err
	}

	created, err := s.repo.CreateStaff(ctx, domain.StaffUser{
		Name:         req.Name,
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	})
	if err != nil {
		return domain.StaffUser{}, err
	}

	s.logAudit(ctx, "staff.create", "staff", created.ID, created.Username)
	return *created, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id string, req domain.StaffUpdateRequest) (domain.StaffUser, error) {
	existing, err := s.repo.GetStaffByID(ctx, id)
	if err != nil {
		return domain.StaffUser{}, err
	}

	staff := *existing
	if req.Name != nil {
		staff.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		role, ok := domain.ParseRole(strings.TrimSpace(*req.Role))
		if !ok {
			return domain.StaffUser{}, store.ErrInvalidInput
		}
		staff.Role = role
	}
	if req.Active != nil {
		staff.Active = *req.Active
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return domain.StaffUser{}, fmt.Errorf("%w: password must be at least 8 characters", store.ErrInvalidInput)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.StaffUser{}, err
		}
		staff.PasswordHash = string(hash)
	}

	updated, err := s.repo.UpdateStaff(ctx, staff)
	if err != nil {
		return domain.StaffUser{}, err
	}

	s.logAudit(ctx, "staff.update", "staff", updated.ID, updated.Username)
	return *updated, nil
}

func (s *Service) DeleteStaff(ctx context.Context, id string) error {
	if actor, ok := ActorFromContext(ctx); ok && actor.StaffID == id {
		return fmt.Errorf("%w: cannot delete own account", store.ErrInvalidInput)
	}
	if err := s.repo.DeleteStaff(ctx, id); err != nil {
		return err
	}
	s.logAudit(ctx, "staff.delete", "staff", id, "")
	return nil
}

func (s *Service) DashboardStats(ctx context.Context) (domain.DashboardStats, error) {
	var stats domain.DashboardStats
	if payload, ok, err := s.cache.Get(ctx, cache.KeyDashboard); err == nil && ok {
		if err := json.Unmarshal(payload, &stats); err == nil {
			return stats, nil
		}
	}

	stats, err := s.reports.DashboardStats(ctx, time.Now())
	if err != nil {
		return domain.DashboardStats{}, err
	}

	if payload, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, cache.KeyDashboard, payload, s.reportTTL); err != nil {
			log.Printf("[service] WARN: dashboard cache write failed: %v", err)
		}
	}
	return stats, nil
}

func (s *Service) SalesReport(ctx context.Context, period string) (domain.SalesReport, error) {
	period = report.NormalizePeriod(period)
	key := cache.SalesReportKey(period)

	var result domain.SalesReport
	if payload, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		if err := json.Unmarshal(payload, &result); err == nil {
			return result, nil
		}
	}

	result, err := s.reports.SalesReport(ctx, period, time.Now())
	if err != nil {
		return domain.SalesReport{}, err
	}

	if payload, err := json.Marshal(result); err == nil {
		if err := s.cache.Set(ctx, key, payload, s.reportTTL); err != nil {
			log.Printf("[service] WARN: report cache write failed: %v", err)
		}
	}
	return result, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if to.IsZero() {
		to = time.Now().UTC().Add(time.Minute)
	}
	if !from.Before(to) {
		return nil, store.ErrInvalidInput
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.repo.ListAuditLogs(ctx, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, action string, entityType string, entityID string, detail string) {
	actor, ok := ActorFromContext(ctx)
	if !ok {
		actor = domain.Actor{Username: "system"}
	}

	if err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New("audit"),
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}); err != nil {
		log.Printf("[audit] WARN: failed to write audit log action=%s entity=%s/%s: %v", action, entityType, entityID, err)
	}
}

func (s *Service) invalidateReports(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cache.KeyDashboard, cache.KeySalesReportPrefix); err != nil {
		log.Printf("[service] WARN: report cache invalidation failed: %v", err)
	}
}

package store

import (
	"context"
	"errors"
	"time"

	"github.com/Aeomar999/POS-sub000/internal/domain"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrDuplicate         = errors.New("duplicate")
)

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListLowStockProducts(ctx context.Context) ([]domain.Product, error)
	GetProductByID(ctx context.Context, id string) (*domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context) (int, error)

	ListServices(ctx context.Context) ([]domain.Service, error)
	GetServiceByID(ctx context.Context, id string) (*domain.Service, error)
	CreateService(ctx context.Context, svc domain.Service) (*domain.Service, error)
	UpdateService(ctx context.Context, svc domain.Service) (*domain.Service, error)
	DeleteService(ctx context.Context, id string) error
	CountServices(ctx context.Context) (int, error)

	// CreateSale persists the sale, its items, and the product stock
	// decrements as one atomic operation. A cart line that would drive a
	// product's stock negative fails the whole sale with
	// ErrInsufficientStock. A sale number collision fails with
	// ErrDuplicate so the caller can regenerate and retry.
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	ListSales(ctx context.Context, since time.Time, limit int) ([]domain.Sale, error)
	GetSaleByID(ctx context.Context, id string) (*domain.Sale, error)
	UpdateSale(ctx context.Context, id string, status string, notes *string) (*domain.Sale, error)

	ListStaff(ctx context.Context) ([]domain.StaffUser, error)
	GetStaffByID(ctx context.Context, id string) (*domain.StaffUser, error)
	GetStaffByUsername(ctx context.Context, username string) (*domain.StaffUser, error)
	CreateStaff(ctx context.Context, staff domain.StaffUser) (*domain.StaffUser, error)
	UpdateStaff(ctx context.Context, staff domain.StaffUser) (*domain.StaffUser, error)
	DeleteStaff(ctx context.Context, id string) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
}

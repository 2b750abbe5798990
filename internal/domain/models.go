package domain

import "time"

// Role is the closed set of staff roles. Permissions are resolved through
// the Permissions table, never by comparing role strings inline.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
)

func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleAdmin, RoleManager, RoleSales:
		return Role(raw), true
	default:
		return "", false
	}
}

// Operation names every permission-gated action exposed over HTTP.
type Operation string

const (
	OpProductRead  Operation = "product:read"
	OpProductWrite Operation = "product:write"
	OpServiceRead  Operation = "service:read"
	OpServiceWrite Operation = "service:write"
	OpSaleRead     Operation = "sale:read"
	OpSaleCreate   Operation = "sale:create"
	OpSaleUpdate   Operation = "sale:update"
	OpStaffRead    Operation = "staff:read"
	OpStaffWrite   Operation = "staff:write"
	OpDashboard    Operation = "dashboard:read"
	OpReports      Operation = "reports:read"
	OpAuditRead    Operation = "audit:read"
)

// Permissions maps operation x role to allow. Reads are open to every
// authenticated role; catalog writes need manager or above; staff
// management is admin only.
var Permissions = map[Operation]map[Role]bool{
	OpProductRead:  {RoleAdmin: true, RoleManager: true, RoleSales: true},
	OpProductWrite: {RoleAdmin: true, RoleManager: true},
	OpServiceRead:  {RoleAdmin: true, RoleManager: true, RoleSales: true},
	OpServiceWrite: {RoleAdmin: true, RoleManager: true},
	OpSaleRead:     {RoleAdmin: true, RoleManager: true, RoleSales: true},
	OpSaleCreate:   {RoleAdmin: true, RoleManager: true, RoleSales: true},
	OpSaleUpdate:   {RoleAdmin: true, RoleManager: true},
	OpStaffRead:    {RoleAdmin: true},
	OpStaffWrite:   {RoleAdmin: true},
	OpDashboard:    {RoleAdmin: true, RoleManager: true, RoleSales: true},
	OpReports:      {RoleAdmin: true, RoleManager: true},
	OpAuditRead:    {RoleAdmin: true},
}

// Allowed reports whether role may perform op.
func Allowed(role Role, op Operation) bool {
	return Permissions[op][role]
}

// Category is the closed set of product categories. Service line items
// always land in CategoryServices regardless of catalog entry.
type Category string

const (
	CategoryNetworking Category = "networking"
	CategoryCCTV       Category = "cctv"
	CategoryIntercom   Category = "intercom"
	CategoryServices   Category = "services"
)

func Categories() []Category {
	return []Category{CategoryNetworking, CategoryCCTV, CategoryIntercom, CategoryServices}
}

func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategoryNetworking, CategoryCCTV, CategoryIntercom, CategoryServices:
		return Category(raw), true
	default:
		return "", false
	}
}

const (
	SaleStatusCompleted = "completed"
	SaleStatusPending   = "pending"
	SaleStatusCancelled = "cancelled"
)

func IsSaleStatus(raw string) bool {
	return raw == SaleStatusCompleted || raw == SaleStatusPending || raw == SaleStatusCancelled
}

type Product struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	SKU               string    `json:"sku,omitempty"`
	Category          Category  `json:"category"`
	PriceCents        int64     `json:"price_cents"`
	CostPriceCents    int64     `json:"cost_price_cents,omitempty"`
	StockQuantity     int       `json:"stock_quantity"`
	LowStockThreshold int       `json:"low_stock_threshold"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type ProductCreateRequest struct {
	Name              string `json:"name"`
	SKU               string `json:"sku"`
	Category          string `json:"category"`
	PriceCents        int64  `json:"price_cents"`
	CostPriceCents    int64  `json:"cost_price_cents"`
	StockQuantity     int    `json:"stock_quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
}

type ProductUpdateRequest struct {
	Name              *string `json:"name,omitempty"`
	SKU               *string `json:"sku,omitempty"`
	Category          *string `json:"category,omitempty"`
	PriceCents        *int64  `json:"price_cents,omitempty"`
	CostPriceCents    *int64  `json:"cost_price_cents,omitempty"`
	StockQuantity     *int    `json:"stock_quantity,omitempty"`
	LowStockThreshold *int    `json:"low_stock_threshold,omitempty"`
	Active            *bool   `json:"active,omitempty"`
}

type Service struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Duration    string    `json:"duration,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ServiceCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Duration    string `json:"duration"`
}

type ServiceUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int64  `json:"price_cents,omitempty"`
	Duration    *string `json:"duration,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

// SaleItem keeps a denormalized name snapshot so historical reports stay
// stable when the source product or service is renamed or deleted.
type SaleItem struct {
	ID             string `json:"id"`
	SaleID         string `json:"sale_id"`
	ProductID      string `json:"product_id,omitempty"`
	ServiceID      string `json:"service_id,omitempty"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	TotalCents     int64  `json:"total_cents"`
}

type Sale struct {
	ID            string     `json:"id"`
	SaleNumber    string     `json:"sale_number"`
	StaffID       string     `json:"staff_id"`
	CustomerName  string     `json:"customer_name,omitempty"`
	CustomerPhone string     `json:"customer_phone,omitempty"`
	SubtotalCents int64      `json:"subtotal_cents"`
	TaxCents      int64      `json:"tax_cents"`
	DiscountCents int64      `json:"discount_cents"`
	TotalCents    int64      `json:"total_cents"`
	Status        string     `json:"status"`
	Notes         string     `json:"notes,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	Items         []SaleItem `json:"items"`
}

type SaleItemInput struct {
	ProductID      string `json:"product_id,omitempty"`
	ServiceID      string `json:"service_id,omitempty"`
	Name           string `json:"name"`
	Quantity       int    `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type SaleCreateRequest struct {
	Items         []SaleItemInput `json:"items"`
	CustomerName  string          `json:"customer_name"`
	CustomerPhone string          `json:"customer_phone"`
	DiscountCents int64           `json:"discount_cents"`
	Notes         string          `json:"notes"`
}

// SaleUpdateRequest covers the only mutable fields of a persisted sale.
type SaleUpdateRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty"`
}

type StaffUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StaffCreateRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type StaffUpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        Role   `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

// Actor is the authenticated staff member attached to a request context.
type Actor struct {
	StaffID  string
	Username string
	Role     Role
}

type WeeklySalesBucket struct {
	Day          string `json:"day"`
	RevenueCents int64  `json:"revenue_cents"`
}

type DashboardStats struct {
	TodaySales        int                 `json:"today_sales"`
	TodayRevenueCents int64               `json:"today_revenue_cents"`
	TotalProducts     int                 `json:"total_products"`
	TotalServices     int                 `json:"total_services"`
	LowStockCount     int                 `json:"low_stock_count"`
	RecentSales       []Sale              `json:"recent_sales"`
	WeeklySales       []WeeklySalesBucket `json:"weekly_sales"`
}

type SalesByDay struct {
	Date         string `json:"date"`
	RevenueCents int64  `json:"revenue_cents"`
	Count        int    `json:"count"`
}

type CategoryBreakdown struct {
	Category     Category `json:"category"`
	RevenueCents int64    `json:"revenue_cents"`
	Quantity     int      `json:"quantity"`
}

type TopProduct struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	RevenueCents int64  `json:"revenue_cents"`
}

type SalesReport struct {
	Period                 string              `json:"period"`
	TotalSales             int                 `json:"total_sales"`
	TotalRevenueCents      int64               `json:"total_revenue_cents"`
	AverageOrderValueCents int64               `json:"average_order_value_cents"`
	SalesByDay             []SalesByDay        `json:"sales_by_day"`
	SalesByCategory        []CategoryBreakdown `json:"sales_by_category"`
	TopProducts            []TopProduct        `json:"top_products"`
	RecentSales            []Sale              `json:"recent_sales"`
}

type AuditLog struct {
	ID            string    `json:"id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     Role      `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

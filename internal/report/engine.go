package report

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/Aeomar999/POS-sub000/internal/domain"
	"github.com/Aeomar999/POS-sub000/internal/store"
)

// Engine computes the dashboard and sales-report summary views from raw
// sale rows. All aggregates degrade to zero values on empty input.
type Engine struct {
	repo store.Repository
}

func NewEngine(repo store.Repository) *Engine {
	return &Engine{repo: repo}
}

// DashboardStats summarizes activity around now. The "today" window is the
// local calendar day containing now; weeklySales is a dense 7-bucket series
// ending on that day.
func (e *Engine) DashboardStats(ctx context.Context, now time.Time) (domain.DashboardStats, error) {
	dayStart := midnight(now)
	weekStart := dayStart.AddDate(0, 0, -6)

	weekSales, err := e.repo.ListSales(ctx, weekStart, 0)
	if err != nil {
		return domain.DashboardStats{}, err
	}

	stats := domain.DashboardStats{
		WeeklySales: make([]domain.WeeklySalesBucket, 0, 7),
	}

	revenueByDay := make(map[time.Time]int64, 7)
	for _, sale := range weekSales {
		day := midnight(sale.CreatedAt.In(now.Location()))
		revenueByDay[day] += sale.TotalCents
		if !day.Before(dayStart) {
			stats.TodaySales++
			stats.TodayRevenueCents += sale.TotalCents
		}
	}
	for day := weekStart; !day.After(dayStart); day = day.AddDate(0, 0, 1) {
		stats.WeeklySales = append(stats.WeeklySales, domain.WeeklySalesBucket{
			Day:          day.Format("Mon"),
			RevenueCents: revenueByDay[day],
		})
	}

	if stats.TotalProducts, err = e.repo.CountProducts(ctx); err != nil {
		return domain.DashboardStats{}, err
	}
	if stats.TotalServices, err = e.repo.CountServices(ctx); err != nil {
		return domain.DashboardStats{}, err
	}

	lowStock, err := e.repo.ListLowStockProducts(ctx)
	if err != nil {
		return domain.DashboardStats{}, err
	}
	stats.LowStockCount = len(lowStock)

	if stats.RecentSales, err = e.repo.ListSales(ctx, time.Time{}, 5); err != nil {
		return domain.DashboardStats{}, err
	}

	return stats, nil
}

// NormalizePeriod maps unknown period values to "week". The fallback is
// silent, matching the report endpoint contract.
func NormalizePeriod(period string) string {
	switch period {
	case "today", "week", "month", "year":
		return period
	default:
		return "week"
	}
}

func periodStart(period string, now time.Time) time.Time {
	switch period {
	case "today":
		return midnight(now)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

func (e *Engine) SalesReport(ctx context.Context, period string, now time.Time) (domain.SalesReport, error) {
	period = NormalizePeriod(period)
	start := periodStart(period, now)

	sales, err := e.repo.ListSales(ctx, start, 0)
	if err != nil {
		return domain.SalesReport{}, err
	}

	result := domain.SalesReport{
		Period:      period,
		TotalSales:  len(sales),
		SalesByDay:  salesByDay(sales, now.Location()),
		TopProducts: topProducts(sales),
		RecentSales: sales,
	}
	for _, sale := range sales {
		result.TotalRevenueCents += sale.TotalCents
	}
	if result.TotalSales > 0 {
		result.AverageOrderValueCents = result.TotalRevenueCents / int64(result.TotalSales)
	}
	if len(result.RecentSales) > 20 {
		result.RecentSales = result.RecentSales[:20]
	}

	if result.SalesByCategory, err = e.salesByCategory(ctx, sales); err != nil {
		return domain.SalesReport{}, err
	}

	return result, nil
}

// salesByDay groups sales into sparse calendar-day buckets, ascending by
// date. Days without sales are omitted.
func salesByDay(sales []domain.Sale, loc *time.Location) []domain.SalesByDay {
	type bucket struct {
		day     time.Time
		revenue int64
		count   int
	}
	byDay := make(map[time.Time]*bucket)
	for _, sale := range sales {
		day := midnight(sale.CreatedAt.In(loc))
		b, ok := byDay[day]
		if !ok {
			b = &bucket{day: day}
			byDay[day] = b
		}
		b.revenue += sale.TotalCents
		b.count++
	}

	buckets := make([]*bucket, 0, len(byDay))
	for _, b := range byDay {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].day.Before(buckets[j].day) })

	result := make([]domain.SalesByDay, len(buckets))
	for i, b := range buckets {
		result[i] = domain.SalesByDay{
			Date:         b.day.Format("Jan 2"),
			RevenueCents: b.revenue,
			Count:        b.count,
		}
	}
	return result
}

// salesByCategory buckets line-item revenue into the four fixed categories.
// Product categories come from one batched lookup; an item whose product was
// deleted since the sale contributes nothing. Zero buckets are dropped.
func (e *Engine) salesByCategory(ctx context.Context, sales []domain.Sale) ([]domain.CategoryBreakdown, error) {
	productIDs := make([]string, 0, 32)
	seen := make(map[string]struct{})
	for _, sale := range sales {
		for _, item := range sale.Items {
			if item.ProductID == "" {
				continue
			}
			if _, ok := seen[item.ProductID]; ok {
				continue
			}
			seen[item.ProductID] = struct{}{}
			productIDs = append(productIDs, item.ProductID)
		}
	}

	products, err := e.repo.GetProductsByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	totals := make(map[domain.Category]*domain.CategoryBreakdown, 4)
	for _, category := range domain.Categories() {
		totals[category] = &domain.CategoryBreakdown{Category: category}
	}
	for _, sale := range sales {
		for _, item := range sale.Items {
			var category domain.Category
			switch {
			case item.ProductID != "":
				product, ok := products[item.ProductID]
				if !ok {
					continue
				}
				category = product.Category
			case item.ServiceID != "":
				category = domain.CategoryServices
			default:
				continue
			}
			b, ok := totals[category]
			if !ok {
				continue
			}
			b.RevenueCents += item.TotalCents
			b.Quantity += item.Quantity
		}
	}

	result := make([]domain.CategoryBreakdown, 0, 4)
	for _, category := range domain.Categories() {
		if totals[category].RevenueCents == 0 && totals[category].Quantity == 0 {
			continue
		}
		result = append(result, *totals[category])
	}
	return result, nil
}

// topProducts groups line items by their denormalized name snapshot, so a
// renamed product splits across its old and new names on purpose.
func topProducts(sales []domain.Sale) []domain.TopProduct {
	byName := make(map[string]*domain.TopProduct)
	for _, sale := range sales {
		for _, item := range sale.Items {
			p, ok := byName[item.Name]
			if !ok {
				p = &domain.TopProduct{Name: item.Name}
				byName[item.Name] = p
			}
			p.Quantity += item.Quantity
			p.RevenueCents += item.TotalCents
		}
	}

	result := make([]domain.TopProduct, 0, len(byName))
	for _, p := range byName {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].RevenueCents == result[j].RevenueCents {
			return strings.Compare(result[i].Name, result[j].Name) < 0
		}
		return result[i].RevenueCents > result[j].RevenueCents
	})
	if len(result) > 10 {
		result = result[:10]
	}
	return result
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package reporting

import (
	"time"

	"github.com/ariefcatur/evn-storefront/internal/catalog"
	"github.com/ariefcatur/evn-storefront/internal/orders"
	"github.com/shopspring/decimal"
)

type DayRevenue struct {
	Date    string          `json:"date"` // YYYY-MM-DD, UTC
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type CategorySales struct {
	Category catalog.Category `json:"category"`
	Units    int              `json:"units"`
	Revenue  decimal.Decimal  `json:"revenue"`
}

type Dashboard struct {
	TotalRevenue   decimal.Decimal       `json:"totalRevenue"`
	TotalOrders    int                   `json:"totalOrders"`
	PendingOrders  int                   `json:"pendingOrders"`
	TotalCustomers int                   `json:"totalCustomers"`
	OrdersByStatus map[orders.Status]int `json:"ordersByStatus"`
	RevenueTrend   []DayRevenue          `json:"revenueTrend"`
	CategorySales  []CategorySales       `json:"categorySales"`
	RecentOrders   []orders.Order        `json:"recentOrders"`
	GeneratedAt    time.Time             `json:"generatedAt"`
}

type OrderStats struct {
	Total    int                   `json:"total"`
	ByStatus map[orders.Status]int `json:"byStatus"`
	Revenue  decimal.Decimal       `json:"revenue"`
}

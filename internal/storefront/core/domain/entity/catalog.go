package entity

import "time"

type Product struct {
	ID       int
	Name     string
	Price    float64
	Category string
	InStock  bool
	Featured bool
	Sold     int
}

type ProductFilter struct {
	Category string
	InStock  *bool
	Limit    int
}

// ProductUpdate is a partial update; nil fields are left alone.
type ProductUpdate struct {
	Name     *string
	Price    *float64
	Category *string
	InStock  *bool
	Featured *bool
}

type CarouselType string

const (
	CarouselProduct  CarouselType = "product"
	CarouselBanner   CarouselType = "banner"
	CarouselCategory CarouselType = "category"
)

func (t CarouselType) Valid() bool {
	switch t {
	case CarouselProduct, CarouselBanner, CarouselCategory:
		return true
	}
	return false
}

type CarouselItem struct {
	ID              string
	Type            CarouselType
	Title           string
	ImageURL        string
	LinkURL         string
	LinkedProductID *int
	Position        int
	IsActive        bool
	CreatedAt       time.Time
}

type DashboardStats struct {
	TotalOrders     int
	TotalRevenue    float64
	TotalUsers      int
	PendingOrders   int
	FailedPayments  int
	InventoryAlerts int
}

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

func (p Period) Valid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

type AnalyticsPoint struct {
	Metric   string
	Value    float64
	Category string
	Period   Period
	Date     string
}

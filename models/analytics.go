package models

// Stats is the headline block of the admin dashboard.
type Stats struct {
	TotalUsers    int64   `json:"totalUsers"`
	TotalProducts int64   `json:"totalProducts"`
	TotalOrders   int64   `json:"totalOrders"`
	PendingOrders int64   `json:"pendingOrders"`
	TotalSales    int64   `json:"totalSales"`
	TotalRevenue  float64 `json:"totalRevenue"`
}

// DailySales is the order count and revenue for one calendar day (UTC).
type DailySales struct {
	Date    string  `bson:"_id" json:"date"`
	Sales   int64   `bson:"sales" json:"sales"`
	Revenue float64 `bson:"revenue" json:"revenue"`
}

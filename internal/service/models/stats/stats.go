package stats

// Dashboard is the per-account activity summary. Farmer accounts get catalog
// and revenue figures, buyer accounts get order and cart counts.
type Dashboard struct {
	UserType          string `json:"userType"`
	ProductsCount     int64  `json:"productsCount"`
	OrdersCount       int64  `json:"ordersCount"`
	TotalRevenueCents int64  `json:"totalRevenueCents"`
	PendingOrders     int64  `json:"pendingOrders"`
	CartItemsCount    int64  `json:"cartItemsCount"`
}

// AdminTotals is the marketplace-wide aggregate for the admin dashboard.
type AdminTotals struct {
	TotalUsers        int64 `json:"totalUsers"`
	TotalProducts     int64 `json:"totalProducts"`
	TotalOrders       int64 `json:"totalOrders"`
	TotalRevenueCents int64 `json:"totalRevenueCents"`
	ActiveFarmers     int64 `json:"activeFarmers"`
	ActiveBuyers      int64 `json:"activeBuyers"`
}

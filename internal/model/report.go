package model

import "time"

// ReportRangeRequest is the payload of the custom-range report.
type ReportRangeRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ProductSales is one row of the custom-range breakdown.
type ProductSales struct {
	ProductName  string  `json:"product_name"`
	TotalSold    int     `json:"total_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	CostPrice    float64 `json:"cost_price"`
	Profit       float64 `json:"profit"`
}

// RangeReport is the custom-range report response.
type RangeReport struct {
	Sales          []ProductSales `json:"sales"`
	TotalRevenue   float64        `json:"total_revenue"`
	TotalItemsSold int            `json:"total_items_sold"`
	TotalProfit    float64        `json:"total_profit"`
}

// SalesReport lists the sales in a fixed window.
type SalesReport struct {
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
	Sales []Sale    `json:"sales"`
}

// MonthlySales is one point of the dashboard sales trend.
type MonthlySales struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}

// Dashboard aggregates the admin overview.
type Dashboard struct {
	TotalRevenue      float64        `json:"total_revenue"`
	TotalTransactions int            `json:"total_transactions"`
	RecentSales       []Sale         `json:"recent_sales"`
	LowStockProducts  []Product      `json:"low_stock_products"`
	SalesTrend        []MonthlySales `json:"sales_trend"`
}

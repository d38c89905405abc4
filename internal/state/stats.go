package state

import (
	"time"

	"github.com/stockroom-pos/stockroom/internal/ledger"
)

// Stats is the dashboard headline block, computed for one store.
type Stats struct {
	TotalSales        float64 `json:"totalSales"`
	TotalPurchases    float64 `json:"totalPurchases"`
	Profit            float64 `json:"profit"`
	TotalProducts     int     `json:"totalProducts"`
	LowStockItems     int     `json:"lowStockItems"`
	TotalCustomers    int     `json:"totalCustomers"`
	TotalOrders       int     `json:"totalOrders"`
	AverageOrderValue float64 `json:"averageOrderValue"`
	SalesGrowth       float64 `json:"salesGrowth"`
	ProfitMargin      float64 `json:"profitMargin"`
}

// ComputeStats derives the headline numbers from a snapshot, scoped to one
// store. Growth compares completed sales over the last 30 days against the
// 30 days before that.
func ComputeStats(snap Snapshot, storeID int64, now time.Time) Stats {
	var stats Stats

	var recentSales, priorSales float64
	recentCutoff := now.AddDate(0, 0, -30)
	priorCutoff := now.AddDate(0, 0, -60)

	for _, t := range snap.Transactions {
		if t.StoreID != storeID || t.Status != ledger.StatusCompleted {
			continue
		}
		switch t.Kind {
		case ledger.KindSale:
			stats.TotalSales += t.Total
			stats.TotalOrders++
			if t.CreatedAt.After(recentCutoff) {
				recentSales += t.Total
			} else if t.CreatedAt.After(priorCutoff) {
				priorSales += t.Total
			}
		case ledger.KindPurchase:
			stats.TotalPurchases += t.Total
		}
	}

	for _, level := range snap.StockLevels {
		if level.StoreID != storeID {
			continue
		}
		stats.TotalProducts++
		if level.Stock <= level.MinStock {
			stats.LowStockItems++
		}
	}

	stats.TotalCustomers = len(snap.Customers)
	stats.Profit = stats.TotalSales - stats.TotalPurchases
	if stats.TotalOrders > 0 {
		stats.AverageOrderValue = stats.TotalSales / float64(stats.TotalOrders)
	}
	if stats.TotalSales > 0 {
		stats.ProfitMargin = stats.Profit / stats.TotalSales * 100
	}
	if priorSales > 0 {
		stats.SalesGrowth = (recentSales - priorSales) / priorSales * 100
	}
	return stats
}

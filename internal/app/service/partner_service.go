package service

import (
	"github.com/nimoapp/nimo-backend/internal/app/repository"
)

// DashboardStats is the partner dashboard payload: order pipeline counts,
// revenue over completed pickups and the listing/rating aggregates.
type DashboardStats struct {
	TotalOrders     int64   `json:"total_orders"`
	PendingOrders   int64   `json:"pending_orders"`
	ConfirmedOrders int64   `json:"confirmed_orders"`
	ReadyOrders     int64   `json:"ready_orders"`
	CompletedOrders int64   `json:"completed_orders"`
	CancelledOrders int64   `json:"cancelled_orders"`
	TotalRevenue    float64 `json:"total_revenue"`
	ItemsRescued    int64   `json:"items_rescued"`
	ActiveListings  int     `json:"active_listings"`
	AverageRating   float64 `json:"average_rating"`
	ReviewCount     int64   `json:"review_count"`
}

type PartnerService interface {
	GetDashboard(umkmID uint) (*DashboardStats, error)
}

type partnerService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	reviewRepo  repository.ReviewRepository
}

func NewPartnerService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	reviewRepo repository.ReviewRepository,
) PartnerService {
	return &partnerService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		reviewRepo:  reviewRepo,
	}
}

func (s *partnerService) GetDashboard(umkmID uint) (*DashboardStats, error) {
	raw, err := s.orderRepo.StatsByUmkm(umkmID)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalOrders:     raw["total_orders"].(int64),
		PendingOrders:   raw["pending_orders"].(int64),
		ConfirmedOrders: raw["confirmed_orders"].(int64),
		ReadyOrders:     raw["ready_orders"].(int64),
		CompletedOrders: raw["completed_orders"].(int64),
		CancelledOrders: raw["cancelled_orders"].(int64),
		TotalRevenue:    raw["total_revenue"].(float64),
		ItemsRescued:    raw["items_rescued"].(int64),
	}

	products, err := s.productRepo.ListByUmkm(umkmID)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		if p.IsActive && !p.Expired() {
			stats.ActiveListings++
		}
	}

	avg, count, err := s.reviewRepo.AverageRatingByUmkm(umkmID)
	if err != nil {
		return nil, err
	}
	stats.AverageRating = avg
	stats.ReviewCount = count

	return stats, nil
}

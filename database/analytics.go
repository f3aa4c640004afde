package database

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AnalyticsStore runs the dashboard aggregations.
type AnalyticsStore struct {
	users    *mongo.Collection
	products *mongo.Collection
	orders   *mongo.Collection
}

func NewAnalyticsStore(db *mongo.Database) *AnalyticsStore {
	return &AnalyticsStore{
		users:    db.Collection(usersCollection),
		products: db.Collection(productsCollection),
		orders:   db.Collection(ordersCollection),
	}
}

// saleFilter selects orders that count as a sale: cash on delivery or a
// settled card payment, and not cancelled or returned. Abandoned checkouts
// stay pending and are left out.
var saleFilter = bson.M{
	"$or": bson.A{
		bson.M{"paymentMethod": models.PaymentMethodCOD, "paymentStatus": bson.M{"$ne": models.PaymentStatusFailed}},
		bson.M{"paymentStatus": models.PaymentStatusPaid},
	},
	"status": bson.M{"$nin": bson.A{models.OrderStatusCancelled, models.OrderStatusReturned}},
}

func (s *AnalyticsStore) Stats(ctx context.Context) (*models.Stats, error) {
	var stats models.Stats
	var err error

	if stats.TotalUsers, err = s.users.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.TotalProducts, err = s.products.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.TotalOrders, err = s.orders.CountDocuments(ctx, bson.M{}); err != nil {
		return nil, err
	}
	if stats.PendingOrders, err = s.orders.CountDocuments(ctx, bson.M{"status": models.OrderStatusPending}); err != nil {
		return nil, err
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: saleFilter}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"totalSales":   bson.M{"$sum": 1},
			"totalRevenue": bson.M{"$sum": "$totalAmount"},
		}}},
	}
	cursor, err := s.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var totals []struct {
		TotalSales   int64   `bson:"totalSales"`
		TotalRevenue float64 `bson:"totalRevenue"`
	}
	if err := cursor.All(ctx, &totals); err != nil {
		return nil, err
	}
	if len(totals) > 0 {
		stats.TotalSales = totals[0].TotalSales
		stats.TotalRevenue = totals[0].TotalRevenue
	}
	return &stats, nil
}

// DailySales groups sales by UTC day in [start, end). Days without sales are
// absent from the result.
func (s *AnalyticsStore) DailySales(ctx context.Context, start, end time.Time) ([]models.DailySales, error) {
	match := bson.M{"createdAt": bson.M{"$gte": start, "$lt": end}}
	for k, v := range saleFilter {
		match[k] = v
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"sales":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$totalAmount"},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cursor, err := s.orders.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	days := []models.DailySales{}
	if err := cursor.All(ctx, &days); err != nil {
		return nil, err
	}
	return days, nil
}

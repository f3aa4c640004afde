package database

import (
	"context"
	"errors"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(db *mongo.Database) *OrderStore {
	return &OrderStore{coll: db.Collection(ordersCollection)}
}

func (s *OrderStore) Create(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	_, err := s.coll.InsertOne(ctx, order)
	return translate(err)
}

// FindForUser returns the order only when it belongs to userID.
func (s *OrderStore) FindForUser(ctx context.Context, id, userID primitive.ObjectID) (*models.Order, error) {
	return s.findOne(ctx, bson.M{"_id": id, "user": userID})
}

func (s *OrderStore) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAll returns every order, newest first, joined with the customer's
// name and email.
func (s *OrderStore) ListAll(ctx context.Context) ([]models.AdminOrder, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "user",
			"foreignField": "_id",
			"as":           "customer",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$customer",
			"preserveNullAndEmptyArrays": true,
		}}},
		{{Key: "$project", Value: bson.M{
			"customer.password":  0,
			"customer.cartItems": 0,
			"customer.addresses": 0,
			"customer.orders":    0,
		}}},
	}

	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	orders := []models.AdminOrder{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// SetStatus assigns any fulfillment status, whatever the current one is.
func (s *OrderStore) SetStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}}
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, update)
}

// TransitionStatus moves a customer's order to status only when its current
// status is one of from. It returns ErrConflict when the order exists but is
// in another state.
func (s *OrderStore) TransitionStatus(ctx context.Context, id, userID primitive.ObjectID, from []models.OrderStatus, to models.OrderStatus) (*models.Order, error) {
	filter := bson.M{
		"_id":    id,
		"user":   userID,
		"status": bson.M{"$in": from},
	}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}

	order, err := s.findOneAndUpdate(ctx, filter, update)
	if !errors.Is(err, ErrNotFound) {
		return order, err
	}
	if _, findErr := s.FindForUser(ctx, id, userID); findErr != nil {
		return nil, findErr
	}
	return nil, ErrConflict
}

func (s *OrderStore) SetStripeSession(ctx context.Context, id primitive.ObjectID, sessionID string) error {
	update := bson.M{"$set": bson.M{"stripeSessionId": sessionID, "updatedAt": time.Now()}}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkPaid flips the payment status to paid. It reports false when the
// order was already paid, so confirmation side effects run once.
func (s *OrderStore) MarkPaid(ctx context.Context, id primitive.ObjectID, receipt models.PaymentReceipt) (bool, error) {
	set := bson.M{
		"paymentStatus": models.PaymentStatusPaid,
		"updatedAt":     time.Now(),
	}
	if receipt.RazorpayPaymentID != "" {
		set["razorpayPaymentId"] = receipt.RazorpayPaymentID
		set["razorpaySignature"] = receipt.RazorpaySignature
	}

	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "paymentStatus": bson.M{"$ne": models.PaymentStatusPaid}},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount > 0, nil
}

// MarkPaymentFailed records a failed payment unless the order is already paid.
func (s *OrderStore) MarkPaymentFailed(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "paymentStatus": bson.M{"$ne": models.PaymentStatusPaid}},
		bson.M{"$set": bson.M{"paymentStatus": models.PaymentStatusFailed, "updatedAt": time.Now()}},
	)
	return err
}

func (s *OrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *OrderStore) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var order models.Order
	if err := s.coll.FindOne(ctx, filter).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (s *OrderStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Order, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var order models.Order
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&order); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

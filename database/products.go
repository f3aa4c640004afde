package database

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductStore struct {
	coll *mongo.Collection
}

func NewProductStore(db *mongo.Database) *ProductStore {
	return &ProductStore{coll: db.Collection(productsCollection)}
}

func (s *ProductStore) Create(ctx context.Context, product *models.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	if product.Reviews == nil {
		product.Reviews = []models.Review{}
	}
	_, err := s.coll.InsertOne(ctx, product)
	return translate(err)
}

func (s *ProductStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// FindByIDs returns the products that still exist, keyed by id.
func (s *ProductStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	found := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := s.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product models.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		found[product.ID] = product
	}
	return found, cursor.Err()
}

func (s *ProductStore) Find(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.SubCategory != "" {
		query["subCategory"] = filter.SubCategory
	}
	if filter.Bestseller != nil {
		query["bestseller"] = *filter.Bestseller
	}
	if filter.Search != "" {
		query["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
	}

	var sort bson.D
	switch filter.Sort {
	case models.SortPriceAsc:
		sort = bson.D{{Key: "price", Value: 1}}
	case models.SortPriceDesc:
		sort = bson.D{{Key: "price", Value: -1}}
	default:
		sort = bson.D{{Key: "createdAt", Value: -1}}
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Sample returns up to n randomly chosen products.
func (s *ProductStore) Sample(ctx context.Context, n int) ([]models.Product, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sample", Value: bson.M{"size": n}}},
	}
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	products := []models.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Update overwrites the editable catalog fields. Reviews and rating are
// left untouched.
func (s *ProductStore) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	update := bson.M{
		"$set": bson.M{
			"name":        product.Name,
			"description": product.Description,
			"price":       product.Price,
			"image":       product.Images,
			"category":    product.Category,
			"subCategory": product.SubCategory,
			"sizes":       product.Sizes,
			"bestseller":  product.Bestseller,
			"updatedAt":   product.UpdatedAt,
		},
	}
	result, err := s.coll.UpdateOne(ctx, bson.M{"_id": product.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the product and returns the deleted document so the caller
// can clean up its images.
func (s *ProductStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

// AddReview appends the review and recomputes the average rating in a single
// conditional update, so a user can never hold two reviews on one product.
func (s *ProductStore) AddReview(ctx context.Context, productID primitive.ObjectID, review models.Review) (*models.Product, error) {
	filter := bson.M{
		"_id":          productID,
		"reviews.user": bson.M{"$ne": review.UserID},
	}
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"reviews": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$reviews", bson.A{}}},
				bson.A{bson.M{"$literal": review}},
			}},
			"updatedAt": time.Now(),
		}}},
		{{Key: "$set", Value: bson.M{
			"averageRating": bson.M{"$avg": "$reviews.rating"},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var product models.Product
	err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&product)
	if err == nil {
		return &product, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	// Distinguish a missing product from an existing review.
	if _, findErr := s.FindByID(ctx, productID); findErr != nil {
		return nil, findErr
	}
	return nil, ErrAlreadyReviewed
}

package database

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/storefront-backend-go/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore persists users together with their address book and cart.
type UserStore struct {
	coll *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{coll: db.Collection(usersCollection)}
}

func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Addresses == nil {
		user.Addresses = []models.Address{}
	}
	if user.CartItems == nil {
		user.CartItems = []models.CartItem{}
	}
	if user.Orders == nil {
		user.Orders = []primitive.ObjectID{}
	}
	_, err := s.coll.InsertOne(ctx, user)
	return translate(err)
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(bson.M{"password": 0})
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetProjection(bson.M{"password": 0}).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdateProfile(ctx context.Context, id primitive.ObjectID, name, phone string) error {
	update := bson.M{
		"$set": bson.M{
			"name":        name,
			"phoneNumber": phone,
			"updatedAt":   time.Now(),
		},
	}
	return s.updateOne(ctx, bson.M{"_id": id}, update)
}

// SaveAddress inserts the address, replacing any entry with the same id.
// A default address clears the flag on every other entry.
func (s *UserStore) SaveAddress(ctx context.Context, userID primitive.ObjectID, address models.Address) error {
	if address.ID.IsZero() {
		address.ID = primitive.NewObjectID()
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"addresses": bson.M{"_id": address.ID}}},
	)
	if err != nil {
		return err
	}

	if address.IsDefault {
		if err := s.clearDefaultAddress(ctx, userID); err != nil {
			return err
		}
	}

	update := bson.M{
		"$push": bson.M{"addresses": address},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return s.updateOne(ctx, bson.M{"_id": userID}, update)
}

func (s *UserStore) UpdateAddress(ctx context.Context, userID primitive.ObjectID, address models.Address) error {
	filter := bson.M{
		"_id":       userID,
		"addresses": bson.M{"$elemMatch": bson.M{"_id": address.ID}},
	}
	if n, err := s.coll.CountDocuments(ctx, filter); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}

	if address.IsDefault {
		if err := s.clearDefaultAddress(ctx, userID); err != nil {
			return err
		}
	}

	update := bson.M{
		"$set": bson.M{
			"addresses.$[elem]": address,
			"updatedAt":         time.Now(),
		},
	}
	arrayFilters := options.ArrayFilters{
		Filters: []interface{}{bson.M{"elem._id": address.ID}},
	}
	_, err := s.coll.UpdateOne(ctx, bson.M{"_id": userID}, update,
		options.Update().SetArrayFilters(arrayFilters))
	return err
}

func (s *UserStore) DeleteAddress(ctx context.Context, userID, addressID primitive.ObjectID) error {
	update := bson.M{
		"$pull": bson.M{"addresses": bson.M{"_id": addressID}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses._id": addressID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *UserStore) clearDefaultAddress(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "addresses.0": bson.M{"$exists": true}},
		bson.M{"$set": bson.M{"addresses.$[].isDefault": false}},
	)
	return err
}

// AddToCart increments the matching cart line or appends a new one with
// quantity 1. The push is guarded so two concurrent adds cannot create
// duplicate lines for the same product and size.
func (s *UserStore) AddToCart(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error {
	line := bson.M{"product": productID, "size": size}

	for attempt := 0; attempt < 2; attempt++ {
		result, err := s.coll.UpdateOne(ctx,
			bson.M{"_id": userID, "cartItems": bson.M{"$elemMatch": line}},
			bson.M{
				"$inc": bson.M{"cartItems.$.quantity": 1},
				"$set": bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			return err
		}
		if result.MatchedCount > 0 {
			return nil
		}

		result, err = s.coll.UpdateOne(ctx,
			bson.M{"_id": userID, "cartItems": bson.M{"$not": bson.M{"$elemMatch": line}}},
			bson.M{
				"$push": bson.M{"cartItems": models.CartItem{ProductID: productID, Size: size, Quantity: 1}},
				"$set":  bson.M{"updatedAt": time.Now()},
			},
		)
		if err != nil {
			return err
		}
		if result.MatchedCount > 0 {
			return nil
		}
	}

	// Neither update matched: the user document itself is gone.
	return ErrNotFound
}

// SetCartQuantity sets the quantity of an existing cart line. A quantity of
// zero removes the line so no line is ever stored below one.
func (s *UserStore) SetCartQuantity(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize, quantity int) error {
	line := bson.M{"product": productID, "size": size}
	filter := bson.M{"_id": userID, "cartItems": bson.M{"$elemMatch": line}}

	var update bson.M
	if quantity == 0 {
		update = bson.M{
			"$pull": bson.M{"cartItems": line},
			"$set":  bson.M{"updatedAt": time.Now()},
		}
	} else {
		update = bson.M{
			"$set": bson.M{
				"cartItems.$.quantity": quantity,
				"updatedAt":            time.Now(),
			},
		}
	}
	return s.updateOne(ctx, filter, update)
}

func (s *UserStore) RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID, size models.ProductSize) error {
	update := bson.M{
		"$pull": bson.M{"cartItems": bson.M{"product": productID, "size": size}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	return s.updateOne(ctx, bson.M{"_id": userID}, update)
}

func (s *UserStore) ClearCart(ctx context.Context, userID primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{
			"cartItems": []models.CartItem{},
			"updatedAt": time.Now(),
		},
	}
	return s.updateOne(ctx, bson.M{"_id": userID}, update)
}

// AttachOrder records the order on the user and, when clearCart is set,
// empties the cart in the same update.
func (s *UserStore) AttachOrder(ctx context.Context, userID, orderID primitive.ObjectID, clearCart bool) error {
	set := bson.M{"updatedAt": time.Now()}
	if clearCart {
		set["cartItems"] = []models.CartItem{}
	}
	update := bson.M{
		"$addToSet": bson.M{"orders": orderID},
		"$set":      set,
	}
	return s.updateOne(ctx, bson.M{"_id": userID}, update)
}

func (s *UserStore) updateOne(ctx context.Context, filter, update bson.M) error {
	result, err := s.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

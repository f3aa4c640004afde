package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Address is an entry in the user's address book.
type Address struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Street    string             `bson:"street" json:"street" validate:"required"`
	City      string             `bson:"city" json:"city" validate:"required"`
	State     string             `bson:"state" json:"state" validate:"required"`
	ZipCode   string             `bson:"zipCode" json:"zipCode" validate:"required"`
	Country   string             `bson:"country" json:"country" validate:"required"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	IsDefault bool               `bson:"isDefault" json:"isDefault"`
}

// CartItem is one line of the cart subdocument, keyed by product and size.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product" json:"product"`
	Size      ProductSize        `bson:"size" json:"size"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}

type User struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Name        string               `bson:"name" json:"name"`
	Email       string               `bson:"email" json:"email"`
	Password    string               `bson:"password,omitempty" json:"-"`
	Role        string               `bson:"role" json:"role"`
	PhoneNumber string               `bson:"phoneNumber,omitempty" json:"phoneNumber,omitempty"`
	Addresses   []Address            `bson:"addresses" json:"addresses"`
	CartItems   []CartItem           `bson:"cartItems" json:"cartItems"`
	Orders      []primitive.ObjectID `bson:"orders" json:"orders"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}

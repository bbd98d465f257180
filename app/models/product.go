package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category groups products. Names are unique.
type Category struct {
	ID   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// ImageFile is the browser File metadata sent alongside an image.
type ImageFile struct {
	Name         string `bson:"name" json:"name"`
	Size         int64  `bson:"size" json:"size"`
	Type         string `bson:"type" json:"type"`
	LastModified int64  `bson:"lastModified" json:"lastModified"`
}

// Image is either inline (DataURL) or offloaded to storage (URL).
type Image struct {
	DataURL string    `bson:"dataURL,omitempty" json:"dataURL,omitempty"`
	URL     string    `bson:"url,omitempty" json:"url,omitempty"`
	File    ImageFile `bson:"file" json:"file"`
}

// Product is the stored catalog document; Categories are references.
type Product struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Price       float64              `bson:"price" json:"price"`
	Variants    []string             `bson:"variants" json:"variants"`
	Categories  []primitive.ObjectID `bson:"categories" json:"categories"`
	Images      []Image              `bson:"images" json:"images"`
}

// ProductDetail is a product with its categories resolved.
type ProductDetail struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Variants    []string           `bson:"variants" json:"variants"`
	Categories  []Category         `bson:"categories" json:"categories"`
	Images      []Image            `bson:"images" json:"images"`
}

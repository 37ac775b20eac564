package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrStoreUnavailable indicates the catalog store cannot be reached at all.
	// It is the only error class that should abort a run.
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrPageUnavailable is returned by a navigator after its retries are exhausted.
	ErrPageUnavailable = errors.New("page unavailable")
)

// RawListing is what a site extractor pulls off one product card. PriceText is
// untouched site text ("1.234,56 TL"); URLs are already absolute.
type RawListing struct {
	Name       string
	PriceText  string
	Image      string
	ProductURL string
}

// PricePoint is one entry of a product's append-only price history.
type PricePoint struct {
	Price float64   `bson:"price" json:"price"`
	Date  time.Time `bson:"date" json:"date"`
}

// GeoPoint is a GeoJSON point, coordinates ordered [longitude, latitude].
type GeoPoint struct {
	Type        string     `bson:"type" json:"type"`
	Coordinates [2]float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(lon, lat float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: [2]float64{lon, lat}}
}

// Business is a seller record. Name is the natural key; fields are fixed at
// creation time and never updated by the pipeline.
type Business struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Website  string             `bson:"website" json:"website"`
	Address  string             `bson:"address,omitempty" json:"address,omitempty"`
	Location GeoPoint           `bson:"location" json:"location"`
}

// Product is one seller listing, keyed by ProductURL. The group_* and
// category_* fields exist for the display layer; the pipeline only writes them.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Price        float64            `bson:"price" json:"price"`
	Brand        string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Image        string             `bson:"image,omitempty" json:"image,omitempty"`
	ProductURL   string             `bson:"productUrl" json:"productUrl"`
	BusinessName string             `bson:"businessName" json:"businessName"`
	BusinessID   primitive.ObjectID `bson:"business,omitempty" json:"business,omitempty"`

	GroupID    string `bson:"group_id,omitempty" json:"group_id,omitempty"`
	GroupTitle string `bson:"group_title,omitempty" json:"group_title,omitempty"`
	GroupSlug  string `bson:"group_slug,omitempty" json:"group_slug,omitempty"`

	MainCategory string `bson:"main_category,omitempty" json:"main_category,omitempty"`
	Subcategory  string `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	CategoryItem string `bson:"category_item,omitempty" json:"category_item,omitempty"`
	CategorySlug string `bson:"category_slug,omitempty" json:"category_slug,omitempty"`

	CreatedAt    time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updatedAt" json:"updatedAt"`
	PriceHistory []PricePoint `bson:"priceHistory" json:"priceHistory"`
}

package models

import (
	"time"

	"gorm.io/datatypes"
)

// PriceOption is the price part of a listing's options. Value is nil until the
// feed has supplied a price; Original is set by the site, never by the feed,
// and must survive price updates.
type PriceOption struct {
	Value    *int   `json:"value"`
	Original string `json:"original"`
}

// ListingOptions is the structured options record stored with a listing.
type ListingOptions struct {
	Price PriceOption `json:"price"`
}

// Listing is a vehicle-for-sale record synced from the Autotelex feed.
// ExternalID is the feed provider's vehicle number and the idempotency key
// for add/change/delete notifications.
type Listing struct {
	ID             uint                                 `gorm:"column:id;primaryKey" json:"id"`
	ExternalID     string                               `gorm:"column:external_id;index;not null" json:"external_id"`
	Title          string                               `gorm:"column:title" json:"title"`
	Notes          string                               `gorm:"column:notes" json:"notes"`
	LicensePlate   string                               `gorm:"column:license_plate" json:"license_plate"`
	Sold           *bool                                `gorm:"column:sold" json:"sold"`
	ListingOptions datatypes.JSONType[ListingOptions]   `gorm:"column:listing_options" json:"listing_options"`
	GalleryImages  datatypes.JSONSlice[uint]            `gorm:"column:gallery_images" json:"gallery_images"`
	CreatedAt      time.Time                            `json:"createdAt"`
	UpdatedAt      time.Time                            `json:"updatedAt"`
}

func (Listing) TableName() string {
	return "listings"
}

// NewListingOptions wraps options for storage in the JSON column.
func NewListingOptions(o ListingOptions) datatypes.JSONType[ListingOptions] {
	return datatypes.NewJSONType(o)
}

// NewGallery wraps an ordered attachment id list for storage.
func NewGallery(ids []uint) datatypes.JSONSlice[uint] {
	return datatypes.NewJSONSlice(ids)
}

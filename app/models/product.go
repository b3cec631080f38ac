package models

import (
	"fmt"
	"time"
)

// Product is a catalogue entry owned by a vendor.
type Product struct {
	ID            ID         `json:"id"`
	VendorID      ID         `json:"vendor_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Price         float64    `json:"price"`
	Stock         int        `json:"stock"`
	CategoryID    ID         `json:"category_id"`
	SubcategoryID *ID        `json:"subcategory_id,omitempty"`
	Images        []string   `json:"images"`
	Video         *string    `json:"video,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

func (p *Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product id is empty", ErrMalformedResponse)
	}
	if p.Price < 0 || p.Stock < 0 {
		return fmt.Errorf("%w: product %s has negative price or stock", ErrMalformedResponse, p.ID)
	}
	return nil
}

// ProductInput is the editable part of a product. Media are file paths
// on a storage disk, uploaded as multipart parts.
type ProductInput struct {
	Name          string  `json:"name"           validate:"required,min=2,max=120"`
	Description   string  `json:"description"    validate:"nullable,max=2000"`
	Price         float64 `json:"price"          validate:"required,gt=0"`
	Stock         int     `json:"stock"          validate:"gte=0"`
	CategoryID    string  `json:"category_id"    validate:"required"`
	SubcategoryID string  `json:"subcategory_id" validate:"nullable"`
	Images        []string `json:"-"`
	Video         string   `json:"-"`
}

type Category struct {
	ID    ID     `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image,omitempty"`
}

type Subcategory struct {
	ID         ID     `json:"id"`
	CategoryID ID     `json:"category_id"`
	Name       string `json:"name"`
}

// Subscription is a vendor plan.
type Subscription struct {
	ID           ID       `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	DurationDays int      `json:"duration_days"`
	Features     []string `json:"features,omitempty"`
}

func (c *Category) Validate() error {
	if c.ID == "" || c.Name == "" {
		return fmt.Errorf("%w: category %q", ErrMalformedResponse, c.ID)
	}
	return nil
}

func (s *Subcategory) Validate() error {
	if s.ID == "" || s.Name == "" {
		return fmt.Errorf("%w: subcategory %q", ErrMalformedResponse, s.ID)
	}
	return nil
}

func (s *Subscription) Validate() error {
	if s.ID == "" || s.Price < 0 || s.DurationDays < 0 {
		return fmt.Errorf("%w: subscription %q", ErrMalformedResponse, s.ID)
	}
	return nil
}

package models

import "fmt"

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func (p Pagination) Validate() error {
	if p.Page < 1 || p.Limit < 1 || p.Total < 0 || p.TotalPages < 0 {
		return fmt.Errorf("%w: pagination %+v", ErrMalformedResponse, p)
	}
	return nil
}

// HasNext reports whether a page after this one exists.
func (p Pagination) HasNext() bool { return p.Page < p.TotalPages }

// OrderPage is one page of GET /orders/vendor/:id.
type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

func (p *OrderPage) Validate() error {
	if err := p.Pagination.Validate(); err != nil {
		return err
	}
	for i := range p.Orders {
		if err := p.Orders[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ProductPage is one page of GET /products.
type ProductPage struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}

func (p *ProductPage) Validate() error {
	if err := p.Pagination.Validate(); err != nil {
		return err
	}
	for i := range p.Products {
		if err := p.Products[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

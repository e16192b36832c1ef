package models

import "github.com/shopspring/decimal"

// ProductPatch carries a partial product update. A nil field is absent from
// the patch and leaves the stored value untouched.
type ProductPatch struct {
	Name         *string
	Brand        *string
	Description  *string
	Category     *string
	Price        *decimal.Decimal
	Images       *[]string
	CountInStock *int
	IsActive     *bool
	IsFeatured   *bool
}

// Apply overwrites the fields present in the patch. Numeric and boolean
// fields are applied even when zero; an empty string never replaces a stored
// string.
func (p ProductPatch) Apply(product *Product) {
	applyString(&product.Name, p.Name)
	applyString(&product.Brand, p.Brand)
	applyString(&product.Description, p.Description)
	applyString(&product.Category, p.Category)

	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.Images != nil {
		product.Images = append(make([]string, 0, len(*p.Images)), *p.Images...)
	}
	if p.CountInStock != nil {
		product.CountInStock = *p.CountInStock
	}
	if p.IsActive != nil {
		product.IsActive = *p.IsActive
	}
	if p.IsFeatured != nil {
		product.IsFeatured = *p.IsFeatured
	}
}

// Empty reports whether the patch carries no fields at all.
func (p ProductPatch) Empty() bool {
	return p.Name == nil && p.Brand == nil && p.Description == nil &&
		p.Category == nil && p.Price == nil && p.Images == nil &&
		p.CountInStock == nil && p.IsActive == nil && p.IsFeatured == nil
}

func applyString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

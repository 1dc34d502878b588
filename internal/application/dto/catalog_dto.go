package dto

import "github.com/shopspring/decimal"

// CreateItemRequest alta de artículo en el catálogo. Cantidad y costo
// promedio inician en 0: solo los mueve el motor de transacciones.
type CreateItemRequest struct {
	Name       string          `json:"name"`
	CategoryID string          `json:"category_id,omitempty"`
	Unit       string          `json:"unit,omitempty"`
	Barcode    string          `json:"barcode,omitempty"`
	SKU        string          `json:"sku,omitempty"`
	SaleRate   decimal.Decimal `json:"sale_rate"`
}

// UpdateItemRequest edición parcial de artículo.
type UpdateItemRequest struct {
	Name       *string          `json:"name,omitempty"`
	CategoryID *string          `json:"category_id,omitempty"`
	Unit       *string          `json:"unit,omitempty"`
	Barcode    *string          `json:"barcode,omitempty"`
	SKU        *string          `json:"sku,omitempty"`
	SaleRate   *decimal.Decimal `json:"sale_rate,omitempty"`
}

// ItemResponse artículo con sus agregados desnormalizados (ruta rápida).
type ItemResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	CategoryID      string          `json:"category_id,omitempty"`
	Unit            string          `json:"unit,omitempty"`
	Barcode         string          `json:"barcode,omitempty"`
	SKU             string          `json:"sku,omitempty"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
	PurchaseRate    decimal.Decimal `json:"purchase_rate"`
	SaleRate        decimal.Decimal `json:"sale_rate"`
	Archived        bool            `json:"archived"`
}

// CreateCounterpartyRequest alta de proveedor o cliente.
type CreateCounterpartyRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	TaxID   string `json:"tax_id,omitempty"`
}

// CounterpartyResponse proveedor o cliente con su saldo desnormalizado.
type CounterpartyResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Phone              string          `json:"phone,omitempty"`
	Email              string          `json:"email,omitempty"`
	Address            string          `json:"address,omitempty"`
	TaxID              string          `json:"tax_id,omitempty"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	TotalPurchases     decimal.Decimal `json:"total_purchases"`
	Active             bool            `json:"active"`
}

// CreateCategoryRequest alta de categoría.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse categoría del catálogo.
type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

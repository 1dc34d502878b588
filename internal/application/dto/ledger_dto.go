package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseLineRequest línea de compra a proveedor.
type PurchaseLineRequest struct {
	ItemID       string          `json:"item_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	PurchaseRate decimal.Decimal `json:"purchase_rate"`
	SaleRate     decimal.Decimal `json:"sale_rate"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	ShelfLoc     string          `json:"shelf_location,omitempty"`
}

// RecordPurchaseRequest cuerpo de POST /api/purchases.
type RecordPurchaseRequest struct {
	VendorID       string                `json:"vendor_id"`
	Lines          []PurchaseLineRequest `json:"lines"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	DiscountAmount decimal.Decimal       `json:"discount_amount"`
	PaidAmount     decimal.Decimal       `json:"paid_amount"`
	PurchaseDate   *time.Time            `json:"purchase_date,omitempty"`
	Notes          string                `json:"notes,omitempty"`
}

// PurchaseResponse compra creada/consultada.
type PurchaseResponse struct {
	ID            string          `json:"id"`
	Sequence      int64           `json:"sequence"`
	VendorID      string          `json:"vendor_id"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Discount      decimal.Decimal `json:"discount_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentStatus string          `json:"payment_status"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PendingAmount decimal.Decimal `json:"pending_amount"`
	PurchaseDate  string          `json:"purchase_date"`
	Outcome       string          `json:"outcome"`
	PendingID     string          `json:"pending_id,omitempty"`
}

// CartLineRequest línea del carrito del POS.
type CartLineRequest struct {
	ItemID    string          `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// RecordSaleRequest cuerpo de POST /api/pos/sales.
type RecordSaleRequest struct {
	Lines          []CartLineRequest `json:"lines"`
	PaymentMethod  string            `json:"payment_method"`
	CustomerID     string            `json:"customer_id,omitempty"`
	BillType       string            `json:"bill_type"`
	TaxAmount      decimal.Decimal   `json:"tax_amount"`
	DiscountAmount decimal.Decimal   `json:"discount_amount"`
	AmountTendered decimal.Decimal   `json:"amount_tendered"`
	// AllowOffline: el cajero reconoce que la venta puede quedar pendiente
	// de sync si no hay conectividad.
	AllowOffline bool `json:"allow_offline"`
}

// SaleLineResponse línea de venta.
type SaleLineResponse struct {
	ItemID    string          `json:"item_id"`
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// SaleResponse venta creada/consultada.
type SaleResponse struct {
	ID             string             `json:"id"`
	Sequence       int64              `json:"sequence"`
	Lines          []SaleLineResponse `json:"lines"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	Discount       decimal.Decimal    `json:"discount_amount"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	PaymentMethod  string             `json:"payment_method"`
	AmountTendered decimal.Decimal    `json:"amount_tendered"`
	ChangeGiven    decimal.Decimal    `json:"change_given"`
	CustomerID     string             `json:"customer_id,omitempty"`
	BillType       string             `json:"bill_type"`
	Status         string             `json:"status"`
	Date           string             `json:"date"`
	Outcome        string             `json:"outcome"`
	PendingID      string             `json:"pending_id,omitempty"`
}

// CancelSaleRequest cuerpo de POST /api/pos/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// ReturnLineRequest línea devuelta.
type ReturnLineRequest struct {
	ItemID   string          `json:"item_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ProcessReturnRequest cuerpo de POST /api/pos/sales/:id/returns.
type ProcessReturnRequest struct {
	Lines        []ReturnLineRequest `json:"lines"`
	RefundMethod string              `json:"refund_method"`
	Reason       string              `json:"reason"`
}

// ReturnResponse devolución creada.
type ReturnResponse struct {
	ID            string          `json:"id"`
	TransactionID string          `json:"transaction_id"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	RefundMethod  string          `json:"refund_method"`
	Reason        string          `json:"reason"`
	Date          string          `json:"date"`
}

// RecordPaymentRequest cuerpo de pagos a proveedor / transacciones de cliente.
type RecordPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	Type        string          `json:"type,omitempty"` // clientes: payment | charge
	ReferenceNo string          `json:"reference_no,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
}

// BalanceEntryResponse asiento del libro de saldos.
type BalanceEntryResponse struct {
	ID             string          `json:"id"`
	CounterpartyID string          `json:"counterparty_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	ReferenceNo    string          `json:"reference_no,omitempty"`
	Date           string          `json:"date"`
	Outcome        string          `json:"outcome,omitempty"`
	PendingID      string          `json:"pending_id,omitempty"`
}

// JournalEntryResponse asiento del diario (consumidores de solo lectura:
// reportes, exportación, impresión).
type JournalEntryResponse struct {
	ID            string          `json:"id"`
	ItemID        string          `json:"item_id"`
	Direction     string          `json:"direction"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	TotalValue    decimal.Decimal `json:"total_value"`
	Date          string          `json:"date"`
	Counterparty  string          `json:"counterparty,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty"`
}

// StockComputedResponse resultado del oráculo ComputeFromJournal.
type StockComputedResponse struct {
	ItemID          string          `json:"item_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	DisplayQuantity decimal.Decimal `json:"display_quantity"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
	Negative        bool            `json:"negative"`
}

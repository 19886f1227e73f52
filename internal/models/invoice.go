package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Invoice is a quote (Devis) or an invoice (Facture). ContactName and Company
// are a snapshot taken at creation and are not kept in sync with the contact.
type Invoice struct {
	ID          string        `json:"id"`
	ContactID   string        `json:"contactId"`
	ContactName string        `json:"contactName"`
	Company     string        `json:"company"`
	Type        InvoiceType   `json:"type"`
	Amount      float64       `json:"amount"`
	Status      InvoiceStatus `json:"status"`
	Date        Date          `json:"date"`
	DueDate     Date          `json:"dueDate"`
	Items       []LineItem    `json:"items"`
}

// LineItem is one billed line.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}

// Total returns quantity × unit price.
func (l LineItem) Total() float64 {
	return l.Quantity * l.UnitPrice
}

// Validate implements validation.Validatable.
func (l LineItem) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Description, validation.Required),
		validation.Field(&l.Quantity, validation.Min(0.0)),
		validation.Field(&l.UnitPrice, validation.Min(0.0)),
	)
}

// ItemsTotal sums the line totals. Amount is caller-supplied and may differ
// while a draft is being edited.
func (i *Invoice) ItemsTotal() float64 {
	var total float64
	for _, item := range i.Items {
		total += item.Total()
	}
	return total
}

// Validate checks the invoice's fields.
func (i *Invoice) Validate() error {
	return AsValidation(validation.ValidateStruct(i,
		validation.Field(&i.Type, isEnum),
		validation.Field(&i.Status, isEnum),
		validation.Field(&i.Amount, validation.Min(0.0)),
		validation.Field(&i.Date, isDate),
		validation.Field(&i.DueDate, isDate),
		validation.Field(&i.Items),
	))
}

// Clone returns a deep copy.
func (i Invoice) Clone() Invoice {
	i.Items = cloneSlice(i.Items)
	return i
}

// InvoiceTotals aggregates amounts by payment state.
type InvoiceTotals struct {
	Paid    float64 `json:"paid"`
	Overdue float64 `json:"overdue"`
	Pending float64 `json:"pending"`
}

// Totals sums invoice amounts: paid invoices (quotes excluded), overdue and
// pending documents of either type. Order does not matter.
func Totals(invoices []Invoice) InvoiceTotals {
	var t InvoiceTotals
	for _, inv := range invoices {
		switch inv.Status {
		case InvoiceStatusPaid:
			if inv.Type == InvoiceTypeInvoice {
				t.Paid += inv.Amount
			}
		case InvoiceStatusOverdue:
			t.Overdue += inv.Amount
		case InvoiceStatusPending:
			t.Pending += inv.Amount
		}
	}
	return t
}

package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Subscription is a recurring revenue contract.
type Subscription struct {
	ID              string             `json:"id"`
	ContactID       string             `json:"contactId"`
	Name            string             `json:"name"`
	Amount          float64            `json:"amount"`
	Frequency       Frequency          `json:"frequency"`
	StartDate       Date               `json:"startDate"`
	NextBillingDate Date               `json:"nextBillingDate"`
	Status          SubscriptionStatus `json:"status"`
	Notes           string             `json:"notes"`
}

// MonthlyValue normalizes the amount to one month.
func (s *Subscription) MonthlyValue() float64 {
	return MonthlyValue(s.Amount, s.Frequency)
}

// MonthlyValue normalizes amount billed at frequency to one month.
func MonthlyValue(amount float64, f Frequency) float64 {
	switch f {
	case FrequencyQuarterly:
		return amount / 3
	case FrequencyYearly:
		return amount / 12
	default:
		return amount
	}
}

// Validate checks the subscription's fields.
func (s *Subscription) Validate() error {
	return AsValidation(validation.ValidateStruct(s,
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Amount, validation.Min(0.0)),
		validation.Field(&s.Frequency, isEnum),
		validation.Field(&s.Status, isEnum),
		validation.Field(&s.StartDate, isDate),
		validation.Field(&s.NextBillingDate, isDate),
	))
}

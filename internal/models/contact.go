package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

// Contact is a person in the freelancer's pipeline.
type Contact struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Company     string   `json:"company"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Stage       Stage    `json:"stage"`
	Revenue     float64  `json:"revenue"`
	Tags        []string `json:"tags"`
	Notes       string   `json:"notes"`
	CreatedAt   Date     `json:"createdAt"`
	LastContact Date     `json:"lastContact"`
	Emails      []Email  `json:"emails"`
	Todos       []string `json:"todos"`
}

// Email is a message exchanged with a contact.
type Email struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Date      Date      `json:"date"`
	Preview   string    `json:"preview"`
	Direction Direction `json:"direction"`
}

// Validate implements validation.Validatable.
func (e Email) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.Date, isDate),
		validation.Field(&e.Direction, isEnum),
	)
}

// Validate checks the contact's fields and returns an *apperr.ValidationError on failure.
func (c *Contact) Validate() error {
	return AsValidation(validation.ValidateStruct(c,
		validation.Field(&c.Name, validation.Required),
		validation.Field(&c.Email, is.EmailFormat),
		validation.Field(&c.Stage, isEnum),
		validation.Field(&c.Revenue, validation.Min(0.0)),
		validation.Field(&c.CreatedAt, isDate),
		validation.Field(&c.LastContact, isDate),
		validation.Field(&c.Emails),
	))
}

// Clone returns a deep copy.
func (c Contact) Clone() Contact {
	c.Tags = cloneSlice(c.Tags)
	c.Emails = cloneSlice(c.Emails)
	c.Todos = cloneSlice(c.Todos)
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Task is a to-do item, optionally attached to a contact.
type Task struct {
	ID        string   `json:"id"`
	Text      string   `json:"text"`
	Done      bool     `json:"done"`
	ContactID string   `json:"contactId"`
	Priority  Priority `json:"priority"`
	DueDate   Date     `json:"dueDate"`
}

// Validate checks the task's fields.
func (t *Task) Validate() error {
	return AsValidation(validation.ValidateStruct(t,
		validation.Field(&t.Text, validation.Required),
		validation.Field(&t.Priority, isEnum),
		validation.Field(&t.DueDate, isDate),
	))
}

// Project groups sub-tasks delivered for a client.
type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	ContactID   string        `json:"contactId"`
	DueDate     Date          `json:"dueDate"`
	Tasks       []ProjectTask `json:"tasks"`
	CreatedAt   Date          `json:"createdAt"`
	AIAdvice    string        `json:"aiAdvice,omitempty"`
}

// ProjectTask is a step inside a project.
type ProjectTask struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Done     bool     `json:"done"`
	Priority Priority `json:"priority"`
	DueDate  Date     `json:"dueDate"`
}

// Validate implements validation.Validatable.
func (t ProjectTask) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.Text, validation.Required),
		validation.Field(&t.Priority, isEnum),
		validation.Field(&t.DueDate, isDate),
	)
}

// Validate checks the project's fields.
func (p *Project) Validate() error {
	return AsValidation(validation.ValidateStruct(p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Status, isEnum),
		validation.Field(&p.DueDate, isDate),
		validation.Field(&p.CreatedAt, isDate),
		validation.Field(&p.Tasks),
	))
}

// Progress returns the share of done sub-tasks in [0,1].
func (p *Project) Progress() float64 {
	if len(p.Tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range p.Tasks {
		if t.Done {
			done++
		}
	}
	return float64(done) / float64(len(p.Tasks))
}

// Clone returns a deep copy.
func (p Project) Clone() Project {
	p.Tasks = cloneSlice(p.Tasks)
	return p
}

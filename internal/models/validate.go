// Package models defines the CRM entities and their boundary validation.
package models

import (
	"errors"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/crmai/internal/apperr"
)

type enum interface{ Valid() bool }

var (
	// isEnum rejects values outside a type's fixed set, including the empty value.
	isEnum = validation.By(func(value interface{}) error {
		e, ok := value.(enum)
		if !ok || !e.Valid() {
			return errors.New("must be a valid value")
		}
		return nil
	})

	// isDate accepts an unset date or a YYYY-MM-DD day.
	isDate = validation.By(func(value interface{}) error {
		d, ok := value.(Date)
		if !ok || !d.Valid() {
			return errors.New("must be a YYYY-MM-DD date")
		}
		return nil
	})
)

// AsValidation flattens ozzo errors into a single *apperr.ValidationError
// naming the first offending field (dotted for nested values).
func AsValidation(err error) error {
	if err == nil {
		return nil
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) > 0 {
		field, reason := firstError("", errs)
		return apperr.Invalid(field, reason)
	}
	return apperr.Invalid("", err.Error())
}

func firstError(prefix string, errs validation.Errors) (string, string) {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	k := keys[0]
	name := k
	if prefix != "" {
		name = prefix + "." + k
	}
	if nested, ok := errs[k].(validation.Errors); ok && len(nested) > 0 {
		return firstError(name, nested)
	}
	return name, errs[k].Error()
}

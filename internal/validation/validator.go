// VRCX Discord Tracker - VRChat Instance Occupancy Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vrcxtracker

package validation

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/vrcxtracker/internal/vrchat"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// Error collects every failed rule of one struct.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}

// Details returns the errors in the shape used by API error responses.
func (e *Error) Details() map[string]interface{} {
	fields := make([]map[string]interface{}, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = map[string]interface{}{
			"field":   f.Field,
			"tag":     f.Tag,
			"message": f.Message,
		}
	}
	return map[string]interface{}{"fields": fields}
}

// Validator returns the shared validator with the custom rules registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Report yaml/json names instead of Go field names.
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"koanf", "json"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})

		_ = validate.RegisterValidation("webhook_url", isWebhookURL)
		_ = validate.RegisterValidation("location", isLocation)
	})
	return validate
}

// ValidateStruct runs the struct's validate tags. It returns nil or an
// *Error listing every failure.
func ValidateStruct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &Error{Fields: []FieldError{{Field: "unknown", Tag: "unknown", Message: err.Error()}}}
	}

	out := &Error{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = FieldError{
			Field:   fe.Namespace(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			Message: translate(fe),
		}
	}
	return out
}

// isWebhookURL accepts an empty string (notifications disabled) or an
// absolute http(s) URL.
func isWebhookURL(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// isLocation accepts a parseable VRChat instance location id.
func isLocation(fl validator.FieldLevel) bool {
	_, err := vrchat.ParseLocation(fl.Field().String())
	return err == nil
}

var messages = map[string]string{
	"required":    "%s is required",
	"webhook_url": "%s must be an http or https URL",
	"location":    "%s must be a VRChat location such as wrld_xxx:12345~region(us)",
	"url":         "%s must be a valid URL",
	"hostname":    "%s must be a valid host name",
	"ip":          "%s must be a valid IP address",
}

var messagesWithParam = map[string]string{
	"oneof": "%s must be one of: %s",
	"gte":   "%s must be greater than or equal to %s",
	"lte":   "%s must be less than or equal to %s",
	"gt":    "%s must be greater than %s",
	"lt":    "%s must be less than %s",
}

func translate(fe validator.FieldError) string {
	field := fe.Namespace()
	if tmpl, ok := messages[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field)
	}
	if tmpl, ok := messagesWithParam[fe.Tag()]; ok {
		return fmt.Sprintf(tmpl, field, fe.Param())
	}

	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package config // import "utf8conv.app/internal/config"

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"utf8conv.app/internal/encoding"
)

var validate *validator.Validate

// Validator returns validator, which reports fields by their env or yaml
// names and knows the "charset" tag.
func Validator() *validator.Validate {
	if validate != nil {
		return validate
	}

	validate = validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(tagName)
	if err := validate.RegisterValidation("charset", validCharset); err != nil {
		panic(err)
	}
	return validate
}

func tagName(fld reflect.StructField) string {
	for _, key := range [...]string{"env", "yaml"} {
		if s := fld.Tag.Get(key); s != "" {
			name, _, _ := strings.Cut(s, ",")
			if name == "-" {
				return ""
			}
			return name
		}
	}
	return ""
}

func validCharset(fl validator.FieldLevel) bool {
	_, err := encoding.Lookup(fl.Field().String())
	return err == nil
}

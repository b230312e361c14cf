package config

import "github.com/go-playground/validator/v10"

var v = validator.New(validator.WithRequiredStructEnabled())

func validateStruct(c *Config) error {
	return v.Struct(c)
}

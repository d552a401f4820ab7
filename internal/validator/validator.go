// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"rafiqe/internal/models"
)

var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterOn(v)
	}
}

// RegisterOn registers the custom validators on v.
func RegisterOn(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("currency", validateCurrency)
	_ = v.RegisterValidation("locale", validateLocale)
	_ = v.RegisterValidation("hex_color", validateHexColor)
	_ = v.RegisterValidation("persona", validatePersona)
	_ = v.RegisterValidation("marital_status", validateMaritalStatus)
	_ = v.RegisterValidation("family_structure", validateFamilyStructure)
	_ = v.RegisterValidation("money", validateMoney)
}

// decimalValue lets numeric tags such as gt=0 apply to decimal amounts.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

// validateMoney rejects amounts with more decimal places than can be stored.
// Decimal fields reach it as float64 through decimalValue.
func validateMoney(fl validator.FieldLevel) bool {
	field := fl.Field()
	switch field.Kind() {
	case reflect.Float32, reflect.Float64:
		return models.WithinMoneyScale(decimal.NewFromFloat(field.Float()))
	case reflect.String:
		d, err := decimal.NewFromString(field.String())
		return err == nil && models.WithinMoneyScale(d)
	default:
		return false
	}
}

func validateCurrency(fl validator.FieldLevel) bool {
	_, ok := models.LookupCurrency(fl.Field().String())
	return ok
}

func validateLocale(fl validator.FieldLevel) bool {
	return models.Locale(fl.Field().String()).Valid()
}

func validateHexColor(fl validator.FieldLevel) bool {
	return hexColorRegex.MatchString(fl.Field().String())
}

func validatePersona(fl validator.FieldLevel) bool {
	return models.Persona(fl.Field().String()).Valid()
}

func validateMaritalStatus(fl validator.FieldLevel) bool {
	return models.MaritalStatus(fl.Field().String()).Valid()
}

func validateFamilyStructure(fl validator.FieldLevel) bool {
	return models.FamilyStructure(fl.Field().String()).Valid()
}

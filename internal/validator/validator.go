// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bourse/internal/models"
)

// validCategories contains the stock category slugs used by the market API.
var validCategories = map[string]bool{
	"film_&_television":  true,
	"business":           true,
	"science":            true,
	"literature":         true,
	"music":              true,
	"politics":           true,
	"jewish_authorities": true,
	"sport":              true,
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("stock_category", validateStockCategory)
		_ = v.RegisterValidation("game_year", validateGameYear)
		_ = v.RegisterValidation("change_factor", validateChangeFactor)
	}
}

// Categories returns the list of valid category slugs in display order.
func Categories() []string {
	return []string{
		"film_&_television", "business", "science",
		"literature", "music", "politics",
		"jewish_authorities", "sport",
	}
}

func validateStockCategory(fl validator.FieldLevel) bool {
	return validCategories[fl.Field().String()]
}

func validateGameYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= models.StartYear && year <= models.TerminalYear
}

func validateChangeFactor(fl validator.FieldLevel) bool {
	return fl.Field().Float() > 0
}

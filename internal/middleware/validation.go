package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tablepick/reco/internal/validation"
)

// ValidationMiddleware validates request bodies and parameters before
// they reach the handlers.
type ValidationMiddleware struct {
	validator *validation.SchemaValidator
}

func NewValidationMiddleware(validator *validation.SchemaValidator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: validator}
}

// ValidateTagPreferences validates by-tags request bodies.
func (vm *ValidationMiddleware) ValidateTagPreferences() gin.HandlerFunc {
	return vm.validateRequestBody("tag-preferences")
}

// ValidatePreferenceQuery validates by-preferences request bodies.
func (vm *ValidationMiddleware) ValidatePreferenceQuery() gin.HandlerFunc {
	return vm.validateRequestBody("preference-query")
}

func (vm *ValidationMiddleware) validateRequestBody(schemaName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodDelete {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			vm.sendValidationError(c, "BODY_READ_ERROR", "Failed to read request body", map[string]interface{}{
				"error": err.Error(),
			})
			return
		}

		// Restore request body for downstream handlers
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if len(bodyBytes) == 0 {
			vm.sendValidationError(c, "EMPTY_BODY", "Request body is required", nil)
			return
		}

		var jsonData interface{}
		if err := json.Unmarshal(bodyBytes, &jsonData); err != nil {
			vm.sendValidationError(c, "INVALID_JSON", "Request body must be valid JSON", map[string]interface{}{
				"parseError": err.Error(),
			})
			return
		}

		result := vm.validator.ValidateJSONString(schemaName, string(bodyBytes))
		if !result.Valid {
			apiError := result.ToAPIError()
			if errorObj, ok := apiError["error"].(map[string]interface{}); ok {
				errorObj["timestamp"] = time.Now().UTC().Format(time.RFC3339)
				errorObj["requestId"] = uuid.New().String()
				errorObj["path"] = c.Request.URL.Path
				errorObj["method"] = c.Request.Method
			}

			c.JSON(http.StatusBadRequest, apiError)
			c.Abort()
			return
		}

		c.Next()
	}
}

// ValidateParams validates the numeric path ids and the paging/count
// query parameters shared by the recommendation routes.
func (vm *ValidationMiddleware) ValidateParams() gin.HandlerFunc {
	return func(c *gin.Context) {
		errors := make([]validation.ValidationError, 0)

		for _, name := range []string{"userId", "restaurantId"} {
			if value := c.Param(name); value != "" && !isValidID(value) {
				errors = append(errors, validation.ValidationError{
					Field:   name,
					Message: "Must be a non-negative integer id",
					Code:    "INVALID_PATH_PARAM",
					Value:   value,
				})
			}
		}

		if count := c.Query("count"); count != "" {
			if !isValidIntInRange(count, 1, 100) {
				errors = append(errors, validation.ValidationError{
					Field:   "count",
					Message: "Count must be an integer between 1 and 100",
					Code:    "INVALID_QUERY_PARAM",
					Value:   count,
				})
			}
		}

		if page := c.Query("page"); page != "" {
			if !isValidIntInRange(page, 0, 1<<30) {
				errors = append(errors, validation.ValidationError{
					Field:   "page",
					Message: "Page must be a non-negative integer",
					Code:    "INVALID_QUERY_PARAM",
					Value:   page,
				})
			}
		}

		if size := c.Query("size"); size != "" {
			if !isValidIntInRange(size, 1, 100) {
				errors = append(errors, validation.ValidationError{
					Field:   "size",
					Message: "Size must be an integer between 1 and 100",
					Code:    "INVALID_QUERY_PARAM",
					Value:   size,
				})
			}
		}

		if userID := c.Query("user_id"); userID != "" && !isValidID(userID) {
			errors = append(errors, validation.ValidationError{
				Field:   "user_id",
				Message: "Must be a non-negative integer id",
				Code:    "INVALID_QUERY_PARAM",
				Value:   userID,
			})
		}

		if len(errors) > 0 {
			vm.sendValidationErrors(c, errors)
			return
		}

		c.Next()
	}
}

func isValidID(value string) bool {
	id, err := strconv.ParseInt(value, 10, 64)
	return err == nil && id >= 0
}

func isValidIntInRange(value string, min, max int) bool {
	num, err := strconv.Atoi(value)
	return err == nil && num >= min && num <= max
}

func (vm *ValidationMiddleware) sendValidationError(c *gin.Context, code, message string, details map[string]interface{}) {
	c.JSON(http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{
			"code":      code,
			"message":   message,
			"details":   details,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"requestId": uuid.New().String(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
		},
	})
	c.Abort()
}

func (vm *ValidationMiddleware) sendValidationErrors(c *gin.Context, errors []validation.ValidationError) {
	errorDetails := map[string]interface{}{"validationErrors": errors}

	fieldErrors := make(map[string][]string)
	for _, err := range errors {
		if err.Field != "" {
			fieldErrors[err.Field] = append(fieldErrors[err.Field], err.Message)
		}
	}
	if len(fieldErrors) > 0 {
		errorDetails["fieldErrors"] = fieldErrors
	}

	c.JSON(http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{
			"code":      "VALIDATION_ERROR",
			"message":   "Request validation failed",
			"details":   errorDetails,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"requestId": uuid.New().String(),
			"path":      c.Request.URL.Path,
			"method":    c.Request.Method,
		},
	})
	c.Abort()
}

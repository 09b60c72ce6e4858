package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	apperrors "github.com/arllen133/blogcms/internal/errors"
)

func respondError(c *gin.Context, err error) {
	status, body := apperrors.HandleError(err)
	c.JSON(status, body)
}

// respondBindError answers a body that failed shape validation. Messages
// name the JSON field of req, never the Go struct.
func respondBindError(c *gin.Context, req any, err error) {
	c.JSON(http.StatusBadRequest, apperrors.Response{
		Error: bindErrorMessage(req, err),
		Code:  apperrors.CodeValidation,
	})
}

func bindErrorMessage(req any, err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		name := jsonFieldName(req, fe.StructField())
		if fe.Tag() == "required" {
			return name + " is required"
		}
		return name + " is invalid"
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return typeErr.Field + " has the wrong type"
	}
	return "request body must be a valid JSON object"
}

// jsonFieldName maps a struct field such as CategoryIDs[0] to its JSON
// name, categoryIds[0].
func jsonFieldName(req any, field string) string {
	base, index := field, ""
	if i := strings.IndexByte(field, '['); i >= 0 {
		base, index = field[:i], field[i:]
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return base + index
	}
	f, ok := t.FieldByName(base)
	if !ok {
		return base + index
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		name = base
	}
	return name + index
}

// NotFound answers unknown routes in the API error shape.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, apperrors.Response{
		Error: "route not found",
		Code:  apperrors.CodeNotFound,
	})
}

package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"roti-erp/internal/apperr"
	"roti-erp/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

const maxPageSize = 500

// RegisterValidation makes binding errors report JSON field names.
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
}

// respondError writes the standard error body for err.
func respondError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal("Something went wrong", err)
	}

	body := gin.H{"error": string(e.Kind), "message": e.Message}
	if len(e.Details) > 0 {
		body["details"] = e.Details
	}
	if e.Kind == apperr.KindInternal {
		logger.FromGin(c).Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
		if e.Err != nil && gin.Mode() != gin.ReleaseMode {
			body["detail"] = e.Err.Error()
		}
		if e.Message == "" || e.Message == "database error" {
			body["message"] = "Something went wrong"
		}
	}
	c.AbortWithStatusJSON(e.Status(), body)
}

// bindJSON decodes the body into v and writes a validation error on failure.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, v any) bool {
	if err := c.ShouldBindQuery(v); err != nil {
		respondError(c, bindingError(err))
		return false
	}
	return true
}

func bindingError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Invalid request body: " + err.Error())
	}
	details := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, apperr.FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return apperr.Validation("Validation failed", details...)
}

// fieldPath drops the struct name from "CreateOrderInput.items[0].productId".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		switch fe.Kind() {
		case reflect.Slice:
			return fmt.Sprintf("must have at least %s entries", fe.Param())
		case reflect.String:
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "datetime":
		return "must match format " + fe.Param()
	}
	return "is invalid (" + fe.Tag() + ")"
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, apperr.Field(name, "must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}

type pageQuery struct {
	Limit  int `form:"limit" binding:"omitempty,min=1"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

func (p pageQuery) limit() int {
	switch {
	case p.Limit <= 0:
		return 50
	case p.Limit > maxPageSize:
		return maxPageSize
	}
	return p.Limit
}

func listBody(data any, total int64, p pageQuery) gin.H {
	return gin.H{"data": data, "total": total, "limit": p.limit(), "offset": p.Offset}
}

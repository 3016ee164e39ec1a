package response

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// 校验错误中使用 json 字段名
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	}
}

// Invalid 请求参数校验失败，返回 422 和字段级错误
func Invalid(c *gin.Context, err error) {
	body := ErrorBody{
		Message: MsgInvalidData,
		Code:    http.StatusUnprocessableEntity,
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		body.Errors = make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			field := fieldName(fe)
			body.Errors[field] = append(body.Errors[field], fieldMessage(field, fe))
		}
	} else if err != nil {
		body.Error = err.Error()
	}

	c.JSON(http.StatusUnprocessableEntity, body)
}

// InvalidField 单个字段的业务校验失败
func InvalidField(c *gin.Context, field, msg string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorBody{
		Message: MsgInvalidData,
		Code:    http.StatusUnprocessableEntity,
		Errors:  map[string][]string{field: {msg}},
	})
}

// fieldName 数组元素的错误归到数组字段上，如 qtys[1] -> qtys
func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if i := strings.IndexByte(name, '['); i > 0 {
		name = name[:i]
	}
	return name
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", field)
	case "min", "gte":
		return fmt.Sprintf("The %s must be at least %s.", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("The %s may not be greater than %s.", field, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", field)
	case "eqfield":
		return fmt.Sprintf("The %s confirmation does not match.", field)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "url":
		return fmt.Sprintf("The %s format is invalid.", field)
	default:
		return fmt.Sprintf("The %s is invalid.", field)
	}
}

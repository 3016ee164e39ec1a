package response

import (
	"errors"
	"loyalty_points_api/pkg/apperr"
	"loyalty_points_api/pkg/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Message 无数据时的响应结构
type Message struct {
	Message string `json:"message"`
	Status  bool   `json:"status"`
}

// ErrorBody 错误响应结构，code 与 HTTP 状态码一致
type ErrorBody struct {
	Message string              `json:"message"`
	Code    int                 `json:"code"`
	Status  bool                `json:"status"`
	Error   string              `json:"error,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Page 分页响应结构
type Page struct {
	Data       interface{}    `json:"data"`
	Pagination utils.PageMeta `json:"pagination"`
}

// Success 成功响应，有数据时直接输出数据本身
func Success(c *gin.Context, data interface{}, msg string) {
	write(c, http.StatusOK, data, msg)
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}, msg string) {
	write(c, http.StatusCreated, data, msg)
}

// Deleted 删除成功响应
// 204 不允许携带响应体，net/http 会丢弃 body，这里仍按统一结构调用
func Deleted(c *gin.Context, msg string) {
	c.JSON(http.StatusNoContent, Message{Message: msg, Status: true})
}

// Paginate 分页响应
func Paginate(c *gin.Context, data interface{}, meta utils.PageMeta) {
	c.JSON(http.StatusOK, Page{Data: data, Pagination: meta})
}

func write(c *gin.Context, code int, data interface{}, msg string) {
	if data == nil {
		c.JSON(code, Message{Message: msg, Status: true})
		return
	}
	c.JSON(code, data)
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, msg string, err error) {
	body := ErrorBody{Message: msg, Code: httpCode}
	if err != nil {
		body.Error = err.Error()
	}
	c.JSON(httpCode, body)
}

// Fail 根据业务错误分类输出响应
// 业务错误直接使用其提示信息，其他错误按 500 处理并附带 fallback 提示和原始错误
func Fail(c *gin.Context, err error, fallback string) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
		if appErr.Kind == apperr.KindValidation && appErr.Field != "" {
			InvalidField(c, appErr.Field, appErr.Message)
			return
		}
		c.JSON(HTTPStatus(appErr.Kind), ErrorBody{Message: appErr.Message, Code: HTTPStatus(appErr.Kind)})
		return
	}
	Error(c, http.StatusInternalServerError, fallback, err)
}

// Forbidden 无权限
func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, MsgForbidden, nil)
}

// Unauthorized 未认证
func Unauthorized(c *gin.Context, msg string) {
	if msg == "" {
		msg = MsgUnauthorized
	}
	c.JSON(http.StatusUnauthorized, Message{Message: msg, Status: false})
}

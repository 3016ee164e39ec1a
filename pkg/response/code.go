package response

import (
	"loyalty_points_api/pkg/apperr"
	"net/http"
)

// HTTPStatus 业务错误分类到 HTTP 状态码的映射
func HTTPStatus(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindInvalidState:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindValidation:
		return http.StatusUnprocessableEntity
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

const (
	MsgInvalidData  = "The given data was invalid."
	MsgForbidden    = "You don't have permission"
	MsgUnauthorized = "Unauthenticated."
)

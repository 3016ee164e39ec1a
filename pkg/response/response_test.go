package response

import (
	"encoding/json"
	"errors"
	"loyalty_points_api/pkg/apperr"
	"loyalty_points_api/pkg/utils"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccess(t *testing.T) {
	t.Run("payload at top level", func(t *testing.T) {
		c, w := newContext()
		Success(c, gin.H{"id": 1, "name": "Mug"}, "Get Gift Successfully")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":1,"name":"Mug"}`, w.Body.String())
	})

	t.Run("message only", func(t *testing.T) {
		c, w := newContext()
		Created(c, nil, "Redeem Gift Successfully")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"message":"Redeem Gift Successfully","status":true}`, w.Body.String())
	})
}

func TestDeleted_NoBody(t *testing.T) {
	c, w := newContext()
	Deleted(c, "Delete Gift Successfully")
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestPaginate(t *testing.T) {
	c, w := newContext()
	p := &utils.Pagination{Page: 1, Limit: 10}
	Paginate(c, []int{1, 2}, p.Meta(2, 2))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []interface{}{1.0, 2.0}, body["data"])
	pagination := body["pagination"].(map[string]interface{})
	assert.Equal(t, 2.0, pagination["total"])
	assert.Equal(t, 1.0, pagination["totalPage"])
	assert.Equal(t, "desc", pagination["sort"])
}

func TestFail(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"not found", apperr.NotFound("Gift Not Found"), http.StatusNotFound, "Gift Not Found"},
		{"invalid state", apperr.InvalidState("Out of Stock"), http.StatusBadRequest, "Out of Stock"},
		{"conflict", apperr.Conflict("Duplicate redemption request"), http.StatusConflict, "Duplicate redemption request"},
		{"unauthorized", apperr.Unauthorized("Unauthorized."), http.StatusUnauthorized, "Unauthorized."},
		{"internal", errors.New("connection refused"), http.StatusInternalServerError, "Failed to Redeem Gift"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newContext()
			Fail(c, tc.err, "Failed to Redeem Gift")

			assert.Equal(t, tc.code, w.Code)
			var body ErrorBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.msg, body.Message)
			assert.Equal(t, tc.code, body.Code)
			assert.False(t, body.Status)
		})
	}

	c, w := newContext()
	Fail(c, errors.New("connection refused"), "Failed to Redeem Gift")
	assert.Contains(t, w.Body.String(), `"error":"connection refused"`)
}

func TestFail_FieldValidation(t *testing.T) {
	c, w := newContext()
	Fail(c, apperr.FieldInvalid("email", "The email has already been taken."), "Failed to Signup")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), `"email":["The email has already been taken."]`)
}

type redeemInput struct {
	IDs  []uint64 `json:"ids" binding:"required,min=1"`
	Qtys []int    `json:"qtys" binding:"required,dive,min=1"`
}

func TestInvalid_FieldNames(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"ids":[1],"qtys":[0]}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var in redeemInput
	err := c.ShouldBindJSON(&in)
	require.Error(t, err)
	Invalid(c, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, MsgInvalidData, body.Message)
	assert.Equal(t, []string{"The qtys must be at least 1."}, body.Errors["qtys"])
}

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestPagination_Normalize(t *testing.T) {
	p := &Pagination{Page: -1, Limit: 500, Sort: "ASC"}
	offset, limit := p.GetPageOffset()

	assert.Equal(t, 0, offset)
	assert.Equal(t, MaxLimit, limit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, SortAsc, p.Sort)

	p = &Pagination{Page: 3, Sort: "sideways"}
	offset, limit = p.GetPageOffset()
	assert.Equal(t, 20, offset)
	assert.Equal(t, DefaultLimit, limit)
	assert.Equal(t, SortDesc, p.Sort)
}

func TestPagination_Meta(t *testing.T) {
	p := &Pagination{Page: 3, Limit: 10, SortBy: "name"}
	meta := p.Meta(21, 1)

	assert.Equal(t, int64(21), meta.Total)
	assert.Equal(t, int64(3), meta.TotalPage)
	assert.Equal(t, 3, meta.Page)
	assert.Equal(t, 1, meta.Limit)
	assert.Equal(t, "name", meta.SortBy)
	assert.Equal(t, SortDesc, meta.Sort)

	assert.Equal(t, int64(1), (&Pagination{}).Meta(0, 0).TotalPage)
}

func TestToken_RoundTrip(t *testing.T) {
	token, jti, exp, err := GenerateToken(42, testSecret, time.Hour, "loyalty")
	require.NoError(t, err)
	assert.NotEmpty(t, jti)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	claims, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, jti, claims.ID)
	assert.Equal(t, "loyalty", claims.Issuer)
}

func TestToken_Rejected(t *testing.T) {
	token, _, _, err := GenerateToken(1, testSecret, time.Hour, "loyalty")
	require.NoError(t, err)

	_, err = ParseToken(token, "another-secret-another-secret-xx")
	assert.Error(t, err)

	expired, _, _, err := GenerateToken(1, testSecret, -time.Minute, "loyalty")
	require.NoError(t, err)
	_, err = ParseToken(expired, testSecret)
	assert.Error(t, err)
}

func TestPassword(t *testing.T) {
	hashed, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hashed)
	assert.True(t, CheckPassword(hashed, "password123"))
	assert.False(t, CheckPassword(hashed, "password124"))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint64(42), id)

	for _, s := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ParseID(s)
		assert.False(t, ok, s)
	}
}

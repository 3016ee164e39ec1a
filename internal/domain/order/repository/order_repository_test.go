package repository

import (
	"context"
	"loyalty_points_api/internal/domain/order/model"
	"loyalty_points_api/pkg/utils"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestExistsForUser(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders" WHERE (user_id = $1 AND attachable_type = $2 AND attachable_id = $3)`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	ok, err := repo.ExistsForUser(context.Background(), 3, model.Target{Kind: model.TargetGift, ID: 10})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatch_SharesTimestamp(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewOrderRepository(db)

	orders := []*model.Order{
		{UserID: 1, AttachableType: model.TargetGift, AttachableID: 1, Qty: 2, Point: 20},
		{UserID: 1, AttachableType: model.TargetGift, AttachableID: 2, Qty: 1, Point: 15},
	}

	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11).AddRow(12))

	require.NoError(t, repo.CreateBatch(context.Background(), orders, 1700000000))
	for _, o := range orders {
		assert.Equal(t, int64(1700000000), o.CreatedAt)
		assert.Equal(t, int64(1700000000), o.UpdatedAt)
		assert.Equal(t, model.StatusOrdered, o.Status)
	}
	assert.Equal(t, uint64(11), orders[0].ID)
	assert.Equal(t, uint64(12), orders[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListForUser(t *testing.T) {
	db, mock := setupDB(t)
	repo := NewOrderRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "attachable_type", "attachable_id", "qty", "point", "status"}).
			AddRow(5, 1, "Gift", 2, 3, 30, "ordered"))

	p := &utils.Pagination{}
	orders, meta, err := repo.ListForUser(context.Background(), 1, nil, p)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, int64(30), orders[0].Point)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, 1, meta.Limit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

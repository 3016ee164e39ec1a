package main

import (
	"context"
	"fmt"
	"loyalty_points_api/pkg/security"
	"loyalty_points_api/pkg/utils"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
)

// demoUser 演示账号
type demoUser struct {
	Name     string
	Email    string
	Password string
	Point    int64
	Role     security.Role
}

// demoGift 演示礼品
type demoGift struct {
	Name        string `db:"name"`
	Description string `db:"description"`
	Stock       int    `db:"stock"`
	Point       int64  `db:"point"`
	Image       string `db:"image"`
}

type giftRow struct {
	demoGift
	Now int64 `db:"now"`
}

// Seeder 初始化角色、权限和演示数据，重复执行不会产生重复记录
type Seeder struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSeeder(db *sqlx.DB) *Seeder {
	return &Seeder{db: db, now: time.Now}
}

// SyncRoles 按 security.RolePermissions 同步角色和权限
func (s *Seeder) SyncRoles(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := s.now().Unix()
	roles := make([]string, 0, len(security.RolePermissions))
	for role := range security.RolePermissions {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	for _, role := range roles {
		var roleID uint64
		err := tx.GetContext(ctx, &roleID, `
			INSERT INTO roles (name, display_name, created_at, updated_at) VALUES ($1, $1, $2, $2)
			ON CONFLICT (name) DO UPDATE SET updated_at = EXCLUDED.updated_at
			RETURNING id`, role, now)
		if err != nil {
			return fmt.Errorf("upsert role %s: %w", role, err)
		}

		for _, perm := range security.RolePermissions[security.Role(role)] {
			var permID uint64
			err := tx.GetContext(ctx, &permID, `
				INSERT INTO permissions (name, display_name, created_at, updated_at) VALUES ($1, $1, $2, $2)
				ON CONFLICT (name) DO UPDATE SET updated_at = EXCLUDED.updated_at
				RETURNING id`, string(perm), now)
			if err != nil {
				return fmt.Errorf("upsert permission %s: %w", perm, err)
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO permission_role (permission_id, role_id) VALUES ($1, $2)
				ON CONFLICT DO NOTHING`, permID, roleID); err != nil {
				return fmt.Errorf("attach permission %s: %w", perm, err)
			}
		}
	}

	return tx.Commit()
}

// SeedUsers 创建演示账号，已存在的邮箱跳过
func (s *Seeder) SeedUsers(ctx context.Context, users []demoUser) (int, error) {
	created := 0
	for _, u := range users {
		var exists bool
		if err := s.db.GetContext(ctx, &exists,
			`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND deleted_at = 0)`, u.Email); err != nil {
			return created, err
		}
		if exists {
			continue
		}

		hashed, err := utils.HashPassword(u.Password)
		if err != nil {
			return created, err
		}

		tx, err := s.db.BeginTxx(ctx, nil)
		if err != nil {
			return created, err
		}
		now := s.now().Unix()
		var userID uint64
		err = tx.GetContext(ctx, &userID, `
			INSERT INTO users (name, email, password, point, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5) RETURNING id`, u.Name, u.Email, hashed, u.Point, now)
		if err == nil {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO role_user (user_id, role_id) SELECT $1, id FROM roles WHERE name = $2`, userID, string(u.Role))
		}
		if err != nil {
			_ = tx.Rollback()
			return created, fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		if err := tx.Commit(); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// SeedGifts 礼品表为空时写入演示礼品
func (s *Seeder) SeedGifts(ctx context.Context, gifts []demoGift) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM gifts WHERE deleted_at = 0`); err != nil {
		return 0, err
	}
	if count > 0 || len(gifts) == 0 {
		return 0, nil
	}

	now := s.now().Unix()
	rows := make([]giftRow, len(gifts))
	for i, g := range gifts {
		rows[i] = giftRow{demoGift: g, Now: now}
	}
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO gifts (name, description, stock, point, image, created_at, updated_at)
		VALUES (:name, :description, :stock, :point, :image, :now, :now)`, rows)
	if err != nil {
		return 0, fmt.Errorf("seed gifts: %w", err)
	}
	return len(gifts), nil
}

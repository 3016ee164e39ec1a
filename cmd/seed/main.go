package main

import (
	"context"
	"flag"
	"log"
	"loyalty_points_api/internal/pkg/config"
	"loyalty_points_api/pkg/security"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

var demoUsers = []demoUser{
	{Name: "Super Admin", Email: "admin@example.com", Password: "password123", Point: 0, Role: security.RoleSuperAdmin},
	{Name: "Demo User", Email: "user@example.com", Password: "password123", Point: 1000, Role: security.RoleUser},
	{Name: "Second User", Email: "user2@example.com", Password: "password123", Point: 1000, Role: security.RoleUser},
}

var demoGifts = []demoGift{
	{Name: "Coffee Voucher", Description: "One free coffee at any partner outlet.", Stock: 100, Point: 50, Image: "https://picsum.photos/seed/coffee/400/300"},
	{Name: "Movie Ticket", Description: "Single ticket for a regular screening.", Stock: 50, Point: 200, Image: "https://picsum.photos/seed/movie/400/300"},
	{Name: "Tumbler", Description: "Stainless steel tumbler, 500ml.", Stock: 30, Point: 350, Image: "https://picsum.photos/seed/tumbler/400/300"},
	{Name: "Wireless Earbuds", Description: "Bluetooth earbuds with charging case.", Stock: 10, Point: 900, Image: "https://picsum.photos/seed/earbuds/400/300"},
}

func main() {
	withDemo := flag.Bool("demo", true, "写入演示账号和礼品")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}

	db, err := sqlx.Connect("pgx", cfg.Database.URL())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s := NewSeeder(db)
	if err := s.SyncRoles(ctx); err != nil {
		log.Fatalf("Failed to sync roles: %v", err)
	}
	log.Println("Roles and permissions synced")

	if !*withDemo {
		return
	}

	users, err := s.SeedUsers(ctx, demoUsers)
	if err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}
	gifts, err := s.SeedGifts(ctx, demoGifts)
	if err != nil {
		log.Fatalf("Failed to seed gifts: %v", err)
	}
	log.Printf("Seed finished, users=%d gifts=%d", users, gifts)
}

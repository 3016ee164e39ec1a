package main

import (
	"errors"
	"flag"
	"log"
	"loyalty_points_api/internal/pkg/config"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	down := flag.Bool("down", false, "回滚全部迁移")
	steps := flag.Int("steps", 0, "只执行指定步数，负数表示回滚")
	force := flag.Int("force", -1, "强制设置版本号 (修复 dirty 状态)")
	source := flag.String("source", "file://migrations", "迁移文件目录")
	flag.Parse()

	env := os.Getenv("APP_ENV")
	cfg, err := config.Load(env)
	if err != nil {
		log.Fatalf("Unable to load config: %v", err)
	}

	m, err := migrate.New(*source, cfg.Database.URL())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch {
	case *force >= 0:
		err = m.Force(*force)
	case *steps != 0:
		err = m.Steps(*steps)
	case *down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		var dirty migrate.ErrDirty
		if errors.As(err, &dirty) {
			log.Fatalf("Database is dirty at version %d, fix it and run with -force=%d", dirty.Version, dirty.Version-1)
		}
		log.Fatal(err)
	}

	version, isDirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Fatal(err)
	}
	log.Printf("Migration successful, version=%d dirty=%v", version, isDirty)
}

// Package testutil provides shared helpers for tests: an in-memory
// database with the schema applied, and an in-process Redis.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gopherblog/internal/model"
)

// OpenTestDB opens an in-memory SQLite database and migrates the blog
// schema. The database is private to the calling test.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Post{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// OpenTestRedis starts an in-process Redis and returns a client bound
// to it.
func OpenTestRedis(t *testing.T) *redisv9.Client {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{
		Addr:        srv.Addr(),
		DialTimeout: time.Second,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

package main

import (
	"context"
	"fmt"

	"boligmatch-backend/internal/app"
	"boligmatch-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var fiberApp *fiber.App
var appCfg *config.Config
var startupDB *gorm.DB
var startupRdb *redis.Client

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic("config load: " + err.Error())
	}
	appCfg = cfg
	a, db, rdb, err := app.CreateApp(cfg)
	if err != nil {
		panic("app create: " + err.Error())
	}
	fiberApp = a
	startupDB = db
	startupRdb = rdb
}

func main() {
	// Verify connections before printing startup logs
	if startupDB != nil {
		sqlDB, err := startupDB.DB()
		if err != nil {
			panic("Postgres: get DB: " + err.Error())
		}
		if err := sqlDB.Ping(); err != nil {
			panic("Postgres connection failed: " + err.Error())
		}
		fmt.Println("Postgres connected")
	}
	if startupRdb != nil {
		if err := startupRdb.Ping(context.Background()).Err(); err != nil {
			panic("Redis connection failed: " + err.Error())
		}
		fmt.Println("Redis connected")
	}
	fmt.Printf("Server running at http://localhost:%s\n", appCfg.Port)
	fmt.Println("---")

	if err := fiberApp.Listen(":" + appCfg.Port); err != nil {
		panic(err)
	}
}

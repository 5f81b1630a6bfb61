package database

import (
	"log"
	"sync"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	db     *gorm.DB
	dbOnce sync.Once
	dbPath = "prensa.db"
)

// SetPath overrides the sqlite file used by GetDB. Must be called before
// the first GetDB call.
func SetPath(path string) {
	dbPath = path
}

func GetDB() *gorm.DB {
	dbOnce.Do(func() {
		var err error
		db, err = Open(dbPath)
		if err != nil {
			log.Fatalf("failed to open database at %s: %v", dbPath, err)
		}
	})
	return db
}

// Open opens a sqlite database at the given path and migrates the schema.
// Tests use this directly with ":memory:" paths.
func Open(path string) (*gorm.DB, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := Migrate(conn); err != nil {
		return nil, err
	}
	return conn, nil
}

func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&AdminUser{},
		&Post{},
		&AutoContentSetting{},
		&AutoArticleLog{},
	)
}

func CloseDB() {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("failed to get underlying sql.DB: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("failed to close database: %v", err)
	}
}

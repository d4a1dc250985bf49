// Package database initialises the MySQL and Redis clients.
package database

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"mindcare-go/internal/model"
	"mindcare-go/pkg/log"
)

var DB *gorm.DB

// InitMySQL opens the connection pool and migrates the chats table.
func InitMySQL(dsn string) {
	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// ChatRecord timestamps are assigned by the service in UTC
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		log.Fatal("failed to connect database", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		log.Fatal("failed to get sql.DB", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := DB.AutoMigrate(&model.ChatRecord{}); err != nil {
		log.Fatal("failed to migrate chats table", err)
	}

	log.Info("MySQL database connected successfully")
}

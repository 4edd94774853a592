package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	chatmodel "github.com/counslerai/counslerai/internal/model/chat"
)

// Open connects to MySQL with the given DSN and migrates the chat tables.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("mysql: connecting: %w", err)
	}

	if err := db.AutoMigrate(&chatmodel.ChatSession{}, &chatmodel.Message{}); err != nil {
		return nil, fmt.Errorf("mysql: migrating schema: %w", err)
	}

	return db, nil
}

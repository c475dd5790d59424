package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/cashswap-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&types.User{},
		&types.ExchangeRequest{},
		&types.Conversation{},
		&types.Message{},
	); err != nil {
		return err
	}
	return EnsureIndexes(db)
}

// EnsureIndexes adds the indexes gorm tags cannot express. The statements are
// valid on both postgres and sqlite.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversation_pair_request
			ON conversation(participant_low, participant_high, request_id);`,
		`CREATE INDEX IF NOT EXISTS idx_exchange_request_location
			ON exchange_request(latitude, longitude);`,
		`CREATE INDEX IF NOT EXISTS idx_message_unread
			ON message(conversation_id, is_read, sender);`,
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}

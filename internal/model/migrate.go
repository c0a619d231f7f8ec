package model

import (
	"fmt"

	"gorm.io/gorm"
)

// All lists every table in dependency order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&CaregiverProfile{},
		&FamilyProfile{},
		&MatchRequest{},
		&Conversation{},
		&ConversationParticipant{},
		&Message{},
		&Review{},
		&Transaction{},
	}
}

// postMigrationSQL holds constraints AutoMigrate cannot express. Every
// statement is idempotent.
var postMigrationSQL = []string{
	// At most one open request per family/caregiver pair.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_match_requests_open_pair
	 ON match_requests (family_profile_id, caregiver_profile_id)
	 WHERE status IN ('pending', 'accepted');`,

	`DO $$ BEGIN
	   ALTER TABLE match_requests ADD CONSTRAINT chk_match_requests_status
	   CHECK (status IN ('pending', 'accepted', 'declined', 'expired', 'completed'));
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

	`DO $$ BEGIN
	   ALTER TABLE transactions ADD CONSTRAINT chk_transactions_status
	   CHECK (status IN ('pending', 'completed', 'failed', 'refunded'));
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

	`DO $$ BEGIN
	   ALTER TABLE transactions ADD CONSTRAINT chk_transactions_amount_positive
	   CHECK (amount > 0);
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

	`DO $$ BEGIN
	   ALTER TABLE reviews ADD CONSTRAINT chk_reviews_type
	   CHECK (review_type IN ('family_to_caregiver', 'caregiver_to_family'));
	 EXCEPTION WHEN duplicate_object THEN NULL; END $$;`,

	`CREATE INDEX IF NOT EXISTS idx_transactions_pending_created
	 ON transactions (created_at) WHERE status = 'pending';`,
}

// Migrate creates or updates the schema on postgres.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("post-migration: %w", err)
		}
	}
	return nil
}

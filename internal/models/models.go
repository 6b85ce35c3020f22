// Package models holds the typed gorm records, one per table.
package models

// All lists every record in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Conversation{},
		&Message{},
		&MoodEntry{},
		&JournalEntry{},
		&Goal{},
	}
}

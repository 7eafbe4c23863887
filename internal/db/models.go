package db

import "time"

// TranslationRecord maps translator.translation_history.
type TranslationRecord struct {
	HistoryID      int64     `gorm:"column:history_id;primaryKey;autoIncrement"`
	RecordUUID     string    `gorm:"column:record_uuid;type:uuid;not null;default:gen_random_uuid();unique"`
	SourceLang     string    `gorm:"column:source_lang;type:text;not null"`
	TargetLang     string    `gorm:"column:target_lang;type:text;not null"`
	OriginalText   string    `gorm:"column:original_text;type:text;not null"`
	TranslatedText string    `gorm:"column:translated_text;type:text;not null;default:''"`
	Backend        *string   `gorm:"column:backend;type:text"`
	Mode           string    `gorm:"column:mode;type:text;not null"`
	ErrorMessage   *string   `gorm:"column:error_message;type:text"`
	LatencyMS      int64     `gorm:"column:latency_ms;type:bigint;not null;default:0"`
	CreatedAt      time.Time `gorm:"column:created_at;type:timestamptz;not null;default:now()"`
}

func (TranslationRecord) TableName() string { return "translator.translation_history" }

func autoMigrateModels() []any {
	return []any{
		&TranslationRecord{},
	}
}

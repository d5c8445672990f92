package rdb

import "time"

// OutputRecord is the RDB persistence model for domain StackOutput.
// Table name: outputs
type OutputRecord struct {
	ID        string    `gorm:"primaryKey;type:text;not null"`
	Stack     string    `gorm:"type:text;not null;uniqueIndex:idx_outputs_stack_key"`
	Key       string    `gorm:"column:output_key;type:text;not null;uniqueIndex:idx_outputs_stack_key"`
	Value     string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (OutputRecord) TableName() string { return "outputs" }

// Package audit is an append-only record of finished transcoding tasks,
// kept for operator history/troubleshooting — never consulted to resume
// or re-drive a batch, which remains purely in-memory in the scheduler.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ybyllc/transcoder-cluster/internal/models"
)

// Entry is one terminal-state row, mirroring the fields of the Task that
// produced it.
type Entry struct {
	ID          uint `gorm:"primaryKey"`
	TaskID      string
	InputFile   string
	OutputFile  string
	Worker      string
	Status      string
	Attempts    int
	ErrorMsg    string
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}

// TableName pins the table name so it doesn't depend on gorm's pluralizer
// guessing right for this struct's name.
func (Entry) TableName() string { return "task_history" }

// Store wraps a GORM connection over a local SQLite file.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if absent) a SQLite database at path and migrates
// the Entry schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrating audit schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one terminal-state task. Only called for tasks that have
// reached models.TaskCompleted or models.TaskFailed.
func (s *Store) Record(ctx context.Context, task models.Task) error {
	entry := Entry{
		TaskID:      task.ID,
		InputFile:   task.InputFile,
		OutputFile:  task.OutputFile,
		Worker:      task.LastWorker,
		Status:      string(task.Status),
		Attempts:    task.Attempts,
		ErrorMsg:    task.Error,
		CreatedAt:   task.CreateTime,
		StartedAt:   task.StartTime,
		CompletedAt: task.EndTime,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("recording task history: %w", err)
	}
	return nil
}

// RecordFunc adapts Store.Record to the scheduler's auditRecord callback,
// handing write failures to onError rather than propagating them, so a
// failed audit write never fails a task. The write is synchronous: the
// calling dispatch loop waits for it to finish.
func (s *Store) RecordFunc(onError func(error)) func(models.Task) {
	return func(task models.Task) {
		if err := s.Record(context.Background(), task); err != nil && onError != nil {
			onError(err)
		}
	}
}

// History returns completed/failed entries, newest first, paginated.
func (s *Store) History(ctx context.Context, offset, limit int) ([]Entry, int64, error) {
	var entries []Entry
	var total int64

	query := s.db.WithContext(ctx).Model(&Entry{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting task history: %w", err)
	}
	if err := query.Order("completed_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, fmt.Errorf("listing task history: %w", err)
	}
	return entries, total, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

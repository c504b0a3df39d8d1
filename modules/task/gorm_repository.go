package task

import (
	"errors"
	"fmt"
	"time"

	domain "github.com/example/daily-planner/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// taskRecord is the GORM model for a stored task.
type taskRecord struct {
	ID          int64      `gorm:"primaryKey;autoIncrement:false"`
	Name        string     `gorm:"size:200;not null"`
	Date        string     `gorm:"size:32;not null"`
	Time        string     `gorm:"size:5;not null"`
	Priority    string     `gorm:"size:10;not null"`
	Reminder    bool       `gorm:"not null;default:false;index"`
	Status      string     `gorm:"size:16;not null"`
	CreatedAt   time.Time  `gorm:"not null"`
	CompletedAt *time.Time
}

// TableName returns the table name for taskRecord.
func (taskRecord) TableName() string {
	return "tasks"
}

func toRecord(t *domain.Task) *taskRecord {
	return &taskRecord{
		ID:          t.ID,
		Name:        t.Name,
		Date:        t.Date,
		Time:        t.Time,
		Priority:    string(t.Priority),
		Reminder:    t.Reminder,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func (r *taskRecord) toDomain() *domain.Task {
	return &domain.Task{
		ID:          r.ID,
		Name:        r.Name,
		Date:        r.Date,
		Time:        r.Time,
		Priority:    domain.Priority(r.Priority),
		Reminder:    r.Reminder,
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

// GormRepository stores tasks in SQLite through GORM.
type GormRepository struct {
	db *gorm.DB
}

var _ Repository = (*GormRepository)(nil)

// OpenSQLite opens dsn, migrates the tasks table and returns a repository.
func OpenSQLite(dsn string, debug bool) (*GormRepository, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A single connection keeps every statement on the same in-memory database.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return NewGormRepository(db)
}

// NewGormRepository migrates the schema on db and wraps it.
func NewGormRepository(db *gorm.DB) (*GormRepository, error) {
	if err := db.AutoMigrate(&taskRecord{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return &GormRepository{db: db}, nil
}

// Insert saves a new task row.
func (r *GormRepository) Insert(task *domain.Task) error {
	if err := r.db.Create(toRecord(task)).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *GormRepository) FindByID(id int64) (*domain.Task, error) {
	var rec taskRecord
	if err := r.db.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", domain.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return rec.toDomain(), nil
}

// Update overwrites every column of an existing task, zero values included.
func (r *GormRepository) Update(task *domain.Task) error {
	result := r.db.Model(&taskRecord{}).Where("id = ?", task.ID).Select("*").Updates(toRecord(task))
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", domain.ErrNotFound, task.ID)
	}
	return nil
}

// Delete removes a task row by ID.
func (r *GormRepository) Delete(id int64) error {
	result := r.db.Delete(&taskRecord{}, "id = ?", id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", domain.ErrNotFound, id)
	}
	return nil
}

// FindAll retrieves all tasks ordered by ID.
func (r *GormRepository) FindAll() ([]*domain.Task, error) {
	var recs []taskRecord
	if err := r.db.Order("id asc").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(recs))
	for i := range recs {
		tasks = append(tasks, recs[i].toDomain())
	}
	return tasks, nil
}

// MaxID returns the highest stored ID, or 0 for an empty table.
func (r *GormRepository) MaxID() (int64, error) {
	var highest int64
	row := r.db.Model(&taskRecord{}).Select("COALESCE(MAX(id), 0)").Row()
	if err := row.Scan(&highest); err != nil {
		return 0, fmt.Errorf("failed to read max id: %w", err)
	}
	return highest, nil
}

// Ping checks that the database connection is alive.
func (r *GormRepository) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Ping()
}

// Close closes the underlying database connection.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

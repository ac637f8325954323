// Package backendstub is a gorm+sqlite stand-in for the remote RDMA
// backend's performance-sampling primitive: it records one row per
// tick and replays it through MeasurePerformance, giving the splitter
// something to drive through every mode transition without real RDMA
// hardware.
package backendstub

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SampleModel is the GORM model for one recorded performance sample.
type SampleModel struct {
	ID         uint      `gorm:"primaryKey"`
	Throughput uint64    `gorm:"not null"`
	Latency    uint64    `gorm:"not null"`
	IOPS       uint64    `gorm:"not null"`
	RecordedAt time.Time `gorm:"index"`
}

// TableName specifies the table name for GORM.
func (SampleModel) TableName() string { return "backend_samples" }

// Store persists and replays performance samples.
type Store struct {
	db *gorm.DB
}

// Open opens (or creates) the sqlite-backed sample store at dbPath.
func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		dbPath = "backend.db"
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: nil})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&SampleModel{}); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)

	return &Store{db: db}, nil
}

// Record persists one tick's sample.
func (s *Store) Record(throughput, latency, iops uint64) error {
	return s.db.Create(&SampleModel{
		Throughput: throughput,
		Latency:    latency,
		IOPS:       iops,
		RecordedAt: time.Now(),
	}).Error
}

// Latest returns the most recently recorded sample, or zeros if none.
func (s *Store) Latest() (throughput, latency, iops uint64, err error) {
	var m SampleModel
	res := s.db.Order("id desc").First(&m)
	if res.Error != nil {
		if res.Error == gorm.ErrRecordNotFound {
			return 0, 0, 0, nil
		}
		return 0, 0, 0, res.Error
	}
	return m.Throughput, m.Latency, m.IOPS, nil
}

// MeasurePerformance implements splitter.Sampler by replaying the
// latest recorded sample; elapsedMS is accepted to satisfy the
// interface but is not otherwise used by this stub.
func (s *Store) MeasurePerformance(elapsedMS uint64) (uint64, uint64, uint64) {
	tp, lat, iops, err := s.Latest()
	if err != nil {
		return 0, 0, 0
	}
	return tp, lat, iops
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

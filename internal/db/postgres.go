package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	gormModels "surfari/boardwalk/internal/models/gorm"
)

// Store owns both database handles: sqlx for the session ledger and
// calendar board (raw SQL, atomic conditional updates), GORM for the
// identity link table. Both share one underlying connection pool.
type Store struct {
	SQL *sqlx.DB
	ORM *gorm.DB
}

// Open connects to Postgres, retrying briefly so the server can come up
// behind a fresh database container, then bootstraps the schema.
func Open(databaseURL string) (*Store, error) {
	var sqlDB *sqlx.DB
	var err error

	for i := 0; i < 10; i++ {
		sqlDB, err = sqlx.Connect("postgres", databaseURL)
		if err == nil {
			break
		}
		time.Sleep(500 * time.Millisecond)
	}
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	ormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		Conn: sqlDB.DB,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open gorm: %w", err)
	}

	store := &Store{SQL: sqlDB, ORM: ormDB}
	if err := store.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return store, nil
}

func (s *Store) migrate() error {
	if err := s.ORM.AutoMigrate(&gormModels.IdentityLink{}); err != nil {
		return err
	}
	for _, stmt := range schemaStatements {
		if _, err := s.SQL.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Close releases the shared connection pool.
func (s *Store) Close() error {
	return s.SQL.Close()
}

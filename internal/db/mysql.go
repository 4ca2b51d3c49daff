package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/karac38/gdevapps-portal/internal/config"

	"github.com/go-sql-driver/mysql"
)

func NewConnection(cfg *config.Config) (*sql.DB, error) {
	dsn, err := mysql.ParseDSN(cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database config: %w", err)
	}
	// Timestamps are scanned into time.Time.
	dsn.ParseTime = true

	connector, err := mysql.NewConnector(dsn)
	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.Database.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.Database.ConnectionLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// IsDuplicate reports whether err is a MySQL unique key violation.
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

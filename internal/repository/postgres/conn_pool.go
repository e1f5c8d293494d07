package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"daily-report/internal/domain"
)

// ConnPool hands out one dedicated connection per unit of work.
// The caller must close the returned io.Closer to give the connection back
// to the pool.
type ConnPool struct {
	db *sql.DB
}

// NewConnPool wraps a configured *sql.DB
func NewConnPool(db *sql.DB) *ConnPool {
	return &ConnPool{db: db}
}

// Open reserves a connection and returns a report repository bound to it
func (p *ConnPool) Open(ctx context.Context) (domain.ReportRepository, io.Closer, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return NewReportRepository(conn), conn, nil
}

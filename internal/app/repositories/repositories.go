package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx. Repositories
// are constructed over the pool; WithTx rebinds a repository to a transaction
// so that a domain-service operation runs all its reads and writes atomically.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository   *UserRepository
	PersonRepository *PersonRepository
	CourseRepository *CourseRepository
	SeatRepository   *SeatRepository
	TokenRepository  *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:   NewUserRepository(db),
		PersonRepository: NewPersonRepository(db),
		CourseRepository: NewCourseRepository(db),
		SeatRepository:   NewSeatRepository(db),
		TokenRepository:  NewTokenRepository(db),
	}
}

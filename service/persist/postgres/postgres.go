// Package postgres holds the durable stores: the persistent token caches,
// the static catalogs, the score tables and the cache-error log.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/medaverse/meda-api/env"
	"github.com/medaverse/meda-api/service/logger"
	"github.com/medaverse/meda-api/util/retry"

	// register postgres driver
	_ "github.com/jackc/pgx/v4/stdlib"
)

var DefaultConnectRetry = retry.Retry{MinWait: 2 * time.Second, MaxWait: 4 * time.Second, MaxRetries: 3}

type connectionParams struct {
	user     string
	password string
	dbname   string
	host     string
	port     int
	appname  string
	retry    *retry.Retry
}

func (c *connectionParams) toConnectionString() string {
	port := c.port
	if port == 0 {
		port = 5432
	}

	connStr := fmt.Sprintf("user=%s dbname=%s host=%s port=%d", c.user, c.dbname, c.host, port)

	// Empty passwords should be omitted so they don't interfere with other parameters
	// (e.g. "password= dbname=something" causes Postgres to ignore the dbname)
	if c.password != "" {
		connStr += fmt.Sprintf(" password=%s", c.password)
	}

	if c.appname != "" {
		connStr += fmt.Sprintf(" application_name=%s", c.appname)
	}

	return connStr
}

func newConnectionParamsFromEnv() connectionParams {
	return connectionParams{
		user:     env.GetString("POSTGRES_USER"),
		password: env.GetString("POSTGRES_PASSWORD"),
		dbname:   env.GetString("POSTGRES_DB"),
		host:     env.GetString("POSTGRES_HOST"),
		port:     env.GetInt("POSTGRES_PORT"),

		// Retry connections by default
		retry: &DefaultConnectRetry,
	}
}

type ConnectionOption func(params *connectionParams)

func WithUser(user string) ConnectionOption {
	return func(params *connectionParams) {
		params.user = user
	}
}

func WithPassword(password string) ConnectionOption {
	return func(params *connectionParams) {
		params.password = password
	}
}

func WithDBName(dbname string) ConnectionOption {
	return func(params *connectionParams) {
		params.dbname = dbname
	}
}

func WithHost(host string) ConnectionOption {
	return func(params *connectionParams) {
		params.host = host
	}
}

func WithPort(port int) ConnectionOption {
	return func(params *connectionParams) {
		params.port = port
	}
}

func WithAppName(appName string) ConnectionOption {
	return func(params *connectionParams) {
		params.appname = appName
	}
}

func WithNoRetries() ConnectionOption {
	return func(params *connectionParams) {
		params.retry = nil
	}
}

// MustCreateClient panics when it fails to create a new database connection.
func MustCreateClient(opts ...ConnectionOption) *sql.DB {
	db, err := NewClient(opts...)
	if err != nil {
		panic(err)
	}
	return db
}

// NewClient creates a new Postgres client over database/sql. By default it
// will try to connect a few times before returning an error.
func NewClient(opts ...ConnectionOption) (*sql.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	params := newConnectionParamsFromEnv()
	for _, opt := range opts {
		opt(&params)
	}

	var db *sql.DB

	connectF := func(ctx context.Context) error {
		var err error
		db, err = sql.Open("pgx", params.toConnectionString())
		if err != nil {
			return err
		}
		return db.PingContext(ctx)
	}

	if params.retry != nil {
		if err := retry.RetryFunc(ctx, connectF, func(err error) bool { return true }, *params.retry); err != nil {
			return nil, err
		}
	} else if err := connectF(ctx); err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(50)
	return db, nil
}

// NewPgxClient creates a new Postgres pool via pgx for the transactional
// paths (token-cache upserts, score intake).
func NewPgxClient(opts ...ConnectionOption) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*20)
	defer cancel()

	params := newConnectionParamsFromEnv()
	for _, opt := range opts {
		opt(&params)
	}

	config, err := pgxpool.ParseConfig(params.toConnectionString())
	if err != nil {
		return nil, err
	}
	config.MaxConns = 50

	var pool *pgxpool.Pool

	connectF := func(ctx context.Context) error {
		var err error
		pool, err = pgxpool.ConnectConfig(ctx, config)
		return err
	}

	if params.retry != nil {
		err = retry.RetryFunc(ctx, connectF, func(err error) bool { return true }, *params.retry)
	} else {
		err = connectF(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// MustCreatePgxClient panics when the pool cannot be created.
func MustCreatePgxClient(opts ...ConnectionOption) *pgxpool.Pool {
	pool, err := NewPgxClient(opts...)
	if err != nil {
		logger.For(nil).WithError(err).Error("could not open pgx pool")
		panic(err)
	}
	return pool
}

func generateValuesPlaceholders(rows, cols int) string {
	out := ""
	for r := 0; r < rows; r++ {
		if r > 0 {
			out += ","
		}
		out += "("
		for c := 0; c < cols; c++ {
			if c > 0 {
				out += ","
			}
			out += fmt.Sprintf("$%d", r*cols+c+1)
		}
		out += ")"
	}
	return out
}

// Package db implements the opening and graceful closing of database connections.
package db

import (
	"fmt"

	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store/memory"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store/mongo"
	"github.com/Neerajupadhayay2004/qie-secure-wallet/lib/store/postgres"
)

const (
	MONGODB  string = "mongodb"
	POSTGRES string = "postgresql"
	MEMORY   string = "memory"
)

// New returns a new database connection according to the options (database type).
func New(options, connection, name string) (store.DB, error) {
	switch options {
	case MONGODB:
		return mongo.New(connection, name)
	case POSTGRES:
		return postgres.New(connection)
	case MEMORY:
		return memory.New(), nil
	}

	return nil, fmt.Errorf("unknown database type %q", options)
}

// Close gracefully closes the database connection.
func Close(options string, dh store.DB) error {
	switch options {
	case MONGODB:
		return dh.(*mongo.Mongo).CloseMongo()
	case POSTGRES:
		return dh.(*postgres.Postgres).ClosePostgres()
	}

	return nil
}

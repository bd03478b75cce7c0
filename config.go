package polystore

import (
	"fmt"

	"github.com/xdbsoft/polystore/rules"
)

//Backend selects the active store implementation. It is fixed at process
//start: the adapter reads it once at construction and never re-reads it.
type Backend string

const (
	//BackendMongo routes every operation to the document store
	BackendMongo Backend = "mongo"
	//BackendPostgres routes every operation to the relational store
	BackendPostgres Backend = "postgres"
)

//MongoConfig holds the document store settings
type MongoConfig struct {
	//URL is the connection string of the deployment. Required unless an
	//externally provisioned client is injected with WithMongoClient.
	URL      string
	Database string `default:"polystore"`
}

//PostgresConfig holds the relational store settings
type PostgresConfig struct {
	ConnStr string
}

//CollectionDefinition describes the authorization for a collection
type CollectionDefinition struct {
	Name  string
	Rules []rules.Rule
}

//Config contains all required information for the initialisation of a polystore server
type Config struct {
	Backend             Backend `default:"mongo"`
	Mongo               MongoConfig
	Postgres            PostgresConfig
	OpenIDConnectIssuer string
	Collections         []CollectionDefinition
}

//Validate reports the first missing or invalid setting for the selected
//backend. It assumes every handle comes from the configuration; when a client
//is injected with WithMongoClient the adapter applies the relaxed check at
//Connect instead.
func (c Config) Validate() error {

	switch c.Backend {
	case BackendMongo:
		if len(c.Mongo.URL) == 0 {
			return configurationError("Mongo.URL is required for the mongo backend")
		}
	case BackendPostgres:
		if len(c.Postgres.ConnStr) == 0 {
			return configurationError("Postgres.ConnStr is required for the postgres backend")
		}
	default:
		return configurationError(fmt.Sprintf("unknown backend %q", c.Backend))
	}

	return nil
}

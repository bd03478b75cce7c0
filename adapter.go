package polystore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	mongodrv "go.mongodb.org/mongo-driver/mongo"

	"github.com/xdbsoft/polystore/api"
	"github.com/xdbsoft/polystore/mongo"
	"github.com/xdbsoft/polystore/postgres"
)

type state int

const (
	stateUninitialized state = iota
	stateConnected
	stateDisconnected
)

//Adapter routes the backend-agnostic operation set to the store selected by
//the configuration. It holds no cross-call state beyond the immutable backend
//selection and the connection handle, performs no internal locking and keeps
//no queue: concurrent callers may issue operations in parallel once Connect
//has returned, and any ordering between them comes from the backend itself.
type Adapter struct {
	cfg   Config
	log   zerolog.Logger
	store api.Store
	state state

	externalMongo *mongodrv.Client
}

//Option configures an Adapter
type Option func(*Adapter)

//WithLogger directs the adapter's policy warnings to the given logger. The
//default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Adapter) {
		a.log = log
	}
}

//WithMongoClient supplies an externally provisioned document-store client.
//The adapter treats it as externally managed: Disconnect leaves it untouched,
//and the Mongo.URL setting is no longer required.
func WithMongoClient(client *mongodrv.Client) Option {
	return func(a *Adapter) {
		a.externalMongo = client
	}
}

//New validates the backend selection and returns an unconnected adapter
func New(cfg Config, opts ...Option) (*Adapter, error) {

	a := &Adapter{
		cfg: cfg,
		log: zerolog.Nop(),
	}
	for _, o := range opts {
		o(a)
	}

	switch cfg.Backend {
	case BackendMongo, BackendPostgres:
	default:
		return nil, configurationError(fmt.Sprintf("unknown backend %q", cfg.Backend))
	}

	return a, nil
}

//Connect establishes the backend handle selected by the configuration. It is
//meant to run once at process start, before any traffic: racing it with
//operation calls is not supported.
func (a *Adapter) Connect(ctx context.Context) error {

	if a.state == stateConnected {
		return badRequest("already connected")
	}

	switch a.cfg.Backend {

	case BackendMongo:
		if a.externalMongo != nil {
			a.store = mongo.FromClient(a.externalMongo, a.cfg.Mongo.Database)
			break
		}
		if len(a.cfg.Mongo.URL) == 0 {
			return configurationError("Mongo.URL is required for the mongo backend")
		}
		s, err := mongo.New(ctx, a.cfg.Mongo.URL, a.cfg.Mongo.Database)
		if err != nil {
			return err
		}
		a.store = s

	case BackendPostgres:
		if len(a.cfg.Postgres.ConnStr) == 0 {
			return configurationError("Postgres.ConnStr is required for the postgres backend")
		}
		s, err := postgres.New(a.cfg.Postgres.ConnStr)
		if err != nil {
			return err
		}
		a.store = s
	}

	a.state = stateConnected
	a.log.Info().Str("backend", string(a.cfg.Backend)).Msg("connected")

	return nil
}

//Disconnect releases the backend handle. Whether the underlying client is
//actually closed is decided by the store's constructor (owned handles are,
//externally managed ones are left untouched). Disconnecting twice is a no-op.
func (a *Adapter) Disconnect() error {

	if a.state != stateConnected {
		a.state = stateDisconnected
		return nil
	}

	a.state = stateDisconnected
	return a.store.Close()
}

func (a *Adapter) active() (api.Store, error) {
	if a.state != stateConnected {
		return nil, badRequest("adapter is not connected")
	}
	return a.store, nil
}

//Create inserts a document and returns its backend-assigned identifier
func (a *Adapter) Create(ctx context.Context, collection string, doc api.Document) (string, error) {
	s, err := a.active()
	if err != nil {
		return "", err
	}
	return s.Create(ctx, collection, doc)
}

//Get returns the first document matching the filter, or nil when absent
func (a *Adapter) Get(ctx context.Context, collection string, filter api.Filter) (api.Document, error) {
	s, err := a.active()
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, collection, filter)
}

//GetMany returns the matching documents in the requested order
func (a *Adapter) GetMany(ctx context.Context, collection string, filter api.Filter, opts api.QueryOptions) ([]api.Document, error) {
	s, err := a.active()
	if err != nil {
		return nil, err
	}
	return s.GetMany(ctx, collection, filter, opts)
}

//Update applies the expression to every match; reports whether any document was affected
func (a *Adapter) Update(ctx context.Context, collection string, filter api.Filter, update api.Update) (bool, error) {
	s, err := a.active()
	if err != nil {
		return false, err
	}
	return s.Update(ctx, collection, filter, update)
}

//Delete removes every match; reports whether any document was affected
func (a *Adapter) Delete(ctx context.Context, collection string, filter api.Filter) (bool, error) {
	s, err := a.active()
	if err != nil {
		return false, err
	}
	return s.Delete(ctx, collection, filter)
}

//Count returns the number of matching documents
func (a *Adapter) Count(ctx context.Context, collection string, filter api.Filter) (int64, error) {
	s, err := a.active()
	if err != nil {
		return 0, err
	}
	return s.Count(ctx, collection, filter)
}

//Aggregate runs a pipeline natively on the document backend. The relational
//backend has no faithful equivalent: the adapter records a policy warning and
//returns an empty result together with the store's typed unsupported error,
//so callers can tell "no matches" from "not translatable". Callers running
//against the relational backend must use the simpler operations instead.
func (a *Adapter) Aggregate(ctx context.Context, collection string, pipeline []api.Document) ([]api.Document, error) {

	s, err := a.active()
	if err != nil {
		return nil, err
	}

	docs, err := s.Aggregate(ctx, collection, pipeline)
	if err != nil && IsUnsupported(err) {
		a.log.Warn().
			Str("backend", string(a.cfg.Backend)).
			Str("collection", collection).
			Msg("aggregation is not supported by the active backend")
		return []api.Document{}, err
	}

	return docs, err
}

//Package mongo implements the document backend. Filters, sort specifications
//and update expressions are already in the store's native shape, so
//operations forward them to the driver without translation; results come back
//canonical as-is.
package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/xdbsoft/polystore/api"
)

const disconnectTimeout = 5 * time.Second

type store struct {
	client *mongo.Client
	db     *mongo.Database
	owned  bool
}

//New connects to the document store and validates the deployment with a ping.
//The returned store owns the client: Close disconnects it.
func New(ctx context.Context, uri, database string) (api.Store, error) {

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect")
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, errors.Wrap(err, "unable to reach deployment")
	}

	return &store{client: client, db: client.Database(database), owned: true}, nil
}

//FromClient wraps an externally provisioned client. The caller keeps
//ownership: Close leaves the client untouched.
func FromClient(client *mongo.Client, database string) api.Store {
	return &store{client: client, db: client.Database(database), owned: false}
}

func (s *store) Create(ctx context.Context, collection string, doc api.Document) (string, error) {

	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return "", errors.Wrapf(err, "unable to insert into %q", collection)
	}

	return formatID(res.InsertedID), nil
}

func (s *store) Get(ctx context.Context, collection string, filter api.Filter) (api.Document, error) {

	var doc api.Document
	err := s.db.Collection(collection).FindOne(ctx, encodeFilter(filter)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "unable to query %q", collection)
	}

	return stringifyID(doc), nil
}

func (s *store) GetMany(ctx context.Context, collection string, filter api.Filter, opts api.QueryOptions) ([]api.Document, error) {

	cur, err := s.db.Collection(collection).Find(ctx, encodeFilter(filter), findOptions(opts))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to query %q", collection)
	}

	return decodeAll(ctx, cur, collection)
}

func (s *store) Update(ctx context.Context, collection string, filter api.Filter, update api.Update) (bool, error) {

	res, err := s.db.Collection(collection).UpdateMany(ctx, encodeFilter(filter), bson.M{"$set": bson.M(update.Fields())})
	if err != nil {
		return false, errors.Wrapf(err, "unable to update %q", collection)
	}

	return res.ModifiedCount > 0, nil
}

func (s *store) Delete(ctx context.Context, collection string, filter api.Filter) (bool, error) {

	res, err := s.db.Collection(collection).DeleteMany(ctx, encodeFilter(filter))
	if err != nil {
		return false, errors.Wrapf(err, "unable to delete from %q", collection)
	}

	return res.DeletedCount > 0, nil
}

func (s *store) Count(ctx context.Context, collection string, filter api.Filter) (int64, error) {

	n, err := s.db.Collection(collection).CountDocuments(ctx, encodeFilter(filter))
	if err != nil {
		return 0, errors.Wrapf(err, "unable to count %q", collection)
	}

	return n, nil
}

func (s *store) Aggregate(ctx context.Context, collection string, pipeline []api.Document) ([]api.Document, error) {

	stages := make([]bson.M, len(pipeline))
	for i, stage := range pipeline {
		stages[i] = bson.M(stage)
	}

	cur, err := s.db.Collection(collection).Aggregate(ctx, stages)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to aggregate %q", collection)
	}

	return decodeAll(ctx, cur, collection)
}

//Close disconnects the client when this store owns it; externally managed
//clients are left untouched. Closing twice is a no-op.
func (s *store) Close() error {

	if !s.owned {
		return nil
	}
	s.owned = false

	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()

	return errors.Wrap(s.client.Disconnect(ctx), "unable to disconnect")
}

func decodeAll(ctx context.Context, cur *mongo.Cursor, collection string) ([]api.Document, error) {

	var docs []api.Document
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "unable to decode results of %q", collection)
	}

	for i, d := range docs {
		docs[i] = stringifyID(d)
	}

	return docs, nil
}

//encodeFilter renders a filter in the store's native form. Membership
//constraints are kept as the native $in operator; identifier values given as
//hex strings are widened to match driver-generated object ids.
func encodeFilter(f api.Filter) bson.M {

	out := bson.M{}
	for field, c := range f {
		if c.IsMembership() {
			values := c.Values()
			if field == api.IDField {
				values = idValues(values)
			}
			out[field] = bson.M{"$in": values}
			continue
		}

		v := c.Literal()
		if field == api.IDField {
			v = idValue(v)
		}
		out[field] = v
	}

	return out
}

func findOptions(opts api.QueryOptions) *options.FindOptions {

	fo := options.Find()

	if len(opts.Sort) > 0 {
		sort := make(bson.D, len(opts.Sort))
		for i, s := range opts.Sort {
			direction := 1
			if s.Descending {
				direction = -1
			}
			sort[i] = bson.E{Key: s.Field, Value: direction}
		}
		fo.SetSort(sort)
	}

	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}

	return fo
}

//idValue widens an identifier literal: a string that parses as an object id
//matches driver-generated identifiers, anything else is compared as given.
func idValue(v interface{}) interface{} {
	if s, ok := v.(string); ok {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return oid
		}
	}
	return v
}

func idValues(values []interface{}) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = idValue(v)
	}
	return out
}

//stringifyID renders a driver-generated object id in the same textual form
//Create returns, so identifiers compare equal across the operation set.
func stringifyID(d api.Document) api.Document {
	if oid, ok := d[api.IDField].(primitive.ObjectID); ok {
		d[api.IDField] = oid.Hex()
	}
	return d
}

func formatID(v interface{}) string {
	if oid, ok := v.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(v)
}

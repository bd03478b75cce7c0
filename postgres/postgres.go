//Package postgres implements the relational backend on top of the GORM
//table/row query builder. Every operation threads its arguments through the
//dialect translators before dispatch and its results through the normalizer
//on the way back; callers never see rows or columns.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xdbsoft/polystore/api"
	"github.com/xdbsoft/polystore/dialect"
)

//timeNow is the clock stamping writes, a variable so it can be pinned
var timeNow = time.Now

type store struct {
	db *gorm.DB
}

//New connects to the relational backend and validates the handle with a ping.
//The returned store owns the connection: Close releases it.
func New(dsn string) (api.Store, error) {

	db, err := gorm.Open(pgdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "unable to connect")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "unable to access connection handle")
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "unable to reach database")
	}

	return &store{db: db}, nil
}

//query builds the predicate chain common to every operation: the filter is
//rewritten to the native identifier and flattened into the builder's map
//condition form.
func (s *store) query(ctx context.Context, collection string, filter api.Filter) *gorm.DB {

	tx := s.db.WithContext(ctx).Table(collection)

	if conds := dialect.Conditions(dialect.ToNative(filter)); conds != nil {
		tx = tx.Where(conds)
	}

	return tx
}

func (s *store) Create(ctx context.Context, collection string, doc api.Document) (string, error) {

	row := insertRow(doc, timeNow())

	if err := s.db.WithContext(ctx).Table(collection).Create(row).Error; err != nil {
		return "", errors.Wrapf(err, "unable to insert into %q", collection)
	}

	return fmt.Sprint(row[dialect.NativeIDField]), nil
}

//insertRow maps the payload to its column form: the canonical identifier key
//moves to the native column, a missing identifier is assigned by this backend,
//and both timestamps are stamped.
func insertRow(doc api.Document, now time.Time) map[string]interface{} {

	row := make(map[string]interface{}, len(doc)+3)
	for k, v := range doc {
		row[k] = v
	}

	if id, ok := row[api.IDField]; ok {
		delete(row, api.IDField)
		row[dialect.NativeIDField] = id
	}
	if _, ok := row[dialect.NativeIDField]; !ok {
		row[dialect.NativeIDField] = xid.New().String()
	}

	row[dialect.CreatedAtField] = now.UTC()
	row[dialect.UpdatedAtField] = now.UTC()

	return row
}

func (s *store) Get(ctx context.Context, collection string, filter api.Filter) (api.Document, error) {

	row := make(map[string]interface{})

	if err := s.query(ctx, collection, filter).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "unable to query %q", collection)
	}

	return dialect.NormalizeOne(row), nil
}

func (s *store) GetMany(ctx context.Context, collection string, filter api.Filter, opts api.QueryOptions) ([]api.Document, error) {

	tx := s.query(ctx, collection, filter)

	if column, descending, ok := dialect.OrderColumn(opts.Sort); ok {
		tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: descending})
	}

	limit, skip := dialect.Window(opts.Limit, opts.Skip)
	if limit > 0 {
		tx = tx.Limit(int(limit))
	}
	if skip > 0 {
		tx = tx.Offset(int(skip))
	}

	var rows []map[string]interface{}
	if err := tx.Find(&rows).Error; err != nil {
		return nil, errors.Wrapf(err, "unable to query %q", collection)
	}

	docs := make([]api.Document, len(rows))
	for i, r := range rows {
		docs[i] = api.Document(r)
	}

	return dialect.NormalizeMany(docs), nil
}

func (s *store) Update(ctx context.Context, collection string, filter api.Filter, update api.Update) (bool, error) {

	tx := s.query(ctx, collection, filter).Updates(dialect.Columns(update, timeNow()))
	if tx.Error != nil {
		return false, errors.Wrapf(tx.Error, "unable to update %q", collection)
	}

	return tx.RowsAffected > 0, nil
}

func (s *store) Delete(ctx context.Context, collection string, filter api.Filter) (bool, error) {

	tx := s.query(ctx, collection, filter).Delete(nil)
	if tx.Error != nil {
		return false, errors.Wrapf(tx.Error, "unable to delete from %q", collection)
	}

	return tx.RowsAffected > 0, nil
}

func (s *store) Count(ctx context.Context, collection string, filter api.Filter) (int64, error) {

	var n int64
	if err := s.query(ctx, collection, filter).Count(&n).Error; err != nil {
		return 0, errors.Wrapf(err, "unable to count %q", collection)
	}

	return n, nil
}

//Aggregate has no faithful translation to the table/row builder: pipelines
//are a document-store construct. The store reports a typed unsupported
//operation instead of guessing at SQL or degrading to an empty result.
func (s *store) Aggregate(ctx context.Context, collection string, pipeline []api.Document) ([]api.Document, error) {
	return nil, unsupported("aggregation pipelines cannot be translated to the relational backend")
}

func (s *store) Close() error {

	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "unable to access connection handle")
	}

	return sqlDB.Close()
}

type unsupported string

func (err unsupported) Error() string {
	return string(err)
}

func (err unsupported) IsUnsupported() bool {
	return true
}

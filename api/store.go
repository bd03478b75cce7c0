package api

import "context"

//QueryOptions carries the ordering and pagination of a multi-document read.
//A Limit of 0 means no explicit bound.
type QueryOptions struct {
	Sort  []SortField
	Limit int64
	Skip  int64
}

//Store describes the backend-agnostic operation set that a datastore should
//implement. Implementations translate the arguments into their own idioms;
//callers never see backend-specific shapes.
type Store interface {
	//Create inserts a document and returns its backend-assigned identifier
	Create(ctx context.Context, collection string, doc Document) (string, error)

	//Get returns the first document matching the filter, or nil when absent
	Get(ctx context.Context, collection string, filter Filter) (Document, error)

	//GetMany returns the matching documents in the requested order
	GetMany(ctx context.Context, collection string, filter Filter, opts QueryOptions) ([]Document, error)

	//Update applies the expression to every match; reports whether any document was affected
	Update(ctx context.Context, collection string, filter Filter, update Update) (bool, error)

	//Delete removes every match; reports whether any document was affected
	Delete(ctx context.Context, collection string, filter Filter) (bool, error)

	//Count returns the number of matching documents
	Count(ctx context.Context, collection string, filter Filter) (int64, error)

	//Aggregate runs a pipeline of transformation stages. Backends without a
	//faithful equivalent report a typed unsupported-operation error.
	Aggregate(ctx context.Context, collection string, pipeline []Document) ([]Document, error)

	//Close releases the backend handle if this store owns it
	Close() error
}

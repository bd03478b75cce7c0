package polystore

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/xdbsoft/polystore/api"
)

type mockedAuthenticator struct{}

func (a mockedAuthenticator) Authenticate(r *http.Request) (api.User, error) {
	formBearer := r.FormValue("auth")
	if len(formBearer) == 0 {
		return api.User{}, nil
	}

	tokens := strings.Split(formBearer, "|")
	if len(tokens) != 4 {
		return api.User{}, notAuthorizedError{}
	}

	return api.User{
		ID:    tokens[0],
		Name:  tokens[1],
		Email: tokens[2],
		Role:  tokens[3],
	}, nil
}

type unsupportedAggregate string

func (err unsupportedAggregate) IsUnsupported() bool {
	return true
}
func (err unsupportedAggregate) Error() string {
	return string(err)
}

//mockedStore emulates a document backend in memory. Ordered traversal walks
//document identifiers in lexical order so results are deterministic.
type mockedStore struct {
	Data             map[string][]api.Document
	Seq              int
	AggregateResults []api.Document
	NoAggregate      bool
	Closed           bool
}

func (s *mockedStore) Create(ctx context.Context, collection string, doc api.Document) (string, error) {

	if s.Data == nil {
		s.Data = make(map[string][]api.Document)
	}

	stored := make(api.Document, len(doc)+1)
	for k, v := range doc {
		stored[k] = v
	}

	id, ok := stored[api.IDField].(string)
	if !ok {
		s.Seq++
		id = "doc" + strconv.Itoa(s.Seq)
		stored[api.IDField] = id
	}

	s.Data[collection] = append(s.Data[collection], stored)
	return id, nil
}

func matches(doc api.Document, filter api.Filter) bool {
	for field, cond := range filter {
		v, ok := doc[field]
		if !ok {
			return false
		}
		if cond.IsMembership() {
			found := false
			for _, candidate := range cond.Values() {
				if fmt.Sprint(v) == fmt.Sprint(candidate) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		} else if fmt.Sprint(v) != fmt.Sprint(cond.Literal()) {
			return false
		}
	}
	return true
}

func (s *mockedStore) selectDocs(collection string, filter api.Filter) []api.Document {
	var out []api.Document
	for _, doc := range s.Data[collection] {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func (s *mockedStore) Get(ctx context.Context, collection string, filter api.Filter) (api.Document, error) {

	docs := s.selectDocs(collection, filter)
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (s *mockedStore) GetMany(ctx context.Context, collection string, filter api.Filter, opts api.QueryOptions) ([]api.Document, error) {

	docs := s.selectDocs(collection, filter)

	if len(opts.Sort) > 0 {
		field, desc := opts.Sort[0].Field, opts.Sort[0].Descending
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := fmt.Sprint(docs[i][field]), fmt.Sprint(docs[j][field])
			if desc {
				return a > b
			}
			return a < b
		})
	}

	if opts.Skip > 0 {
		if opts.Skip >= int64(len(docs)) {
			docs = nil
		} else {
			docs = docs[opts.Skip:]
		}
	}
	if opts.Limit > 0 && opts.Limit < int64(len(docs)) {
		docs = docs[:opts.Limit]
	}

	return docs, nil
}

func (s *mockedStore) Update(ctx context.Context, collection string, filter api.Filter, update api.Update) (bool, error) {

	affected := false
	for _, doc := range s.Data[collection] {
		if !matches(doc, filter) {
			continue
		}
		for k, v := range update.Fields() {
			doc[k] = v
		}
		affected = true
	}
	return affected, nil
}

func (s *mockedStore) Delete(ctx context.Context, collection string, filter api.Filter) (bool, error) {

	var kept []api.Document
	affected := false
	for _, doc := range s.Data[collection] {
		if matches(doc, filter) {
			affected = true
			continue
		}
		kept = append(kept, doc)
	}
	s.Data[collection] = kept
	return affected, nil
}

func (s *mockedStore) Count(ctx context.Context, collection string, filter api.Filter) (int64, error) {
	return int64(len(s.selectDocs(collection, filter))), nil
}

func (s *mockedStore) Aggregate(ctx context.Context, collection string, pipeline []api.Document) ([]api.Document, error) {

	if s.NoAggregate {
		return nil, unsupportedAggregate("aggregation pipelines are not supported")
	}
	return s.AggregateResults, nil
}

func (s *mockedStore) Close() error {
	s.Closed = true
	return nil
}

//connectedAdapter wires a mocked store into an adapter as if Connect succeeded
func connectedAdapter(store api.Store) *Adapter {
	a, _ := New(Config{Backend: BackendMongo})
	a.store = store
	a.state = stateConnected
	return a
}

package polystore

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/xdbsoft/polystore/api"
	"github.com/xdbsoft/polystore/oidc"
	"github.com/xdbsoft/polystore/rules"
)

//Server instantiates a new polystore HTTP handler: it builds the adapter for
//the configured backend, connects it, and exposes the backend-agnostic
//operation set as REST routes on collections and documents.
func Server(ctx context.Context, cfg Config, opts ...Option) (http.Handler, error) {

	adapter, err := New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	if err := adapter.Connect(ctx); err != nil {
		return nil, err
	}

	var a api.Authenticator
	if len(cfg.OpenIDConnectIssuer) > 0 {

		a, err = oidc.New(cfg.OpenIDConnectIssuer)
		if err != nil {
			return nil, err
		}
	}

	s := server{
		Adapter:       adapter,
		Authenticator: a,
		RuleChecker:   rules.Checker{},
		Collections:   make(map[string]CollectionDefinition),
		Log:           adapter.log,
	}

	for _, c := range cfg.Collections {
		s.Collections[c.Name] = c
	}

	s.routes()

	return &s, nil
}

type server struct {
	Collections   map[string]CollectionDefinition
	Authenticator api.Authenticator
	RuleChecker   rules.Checker
	Adapter       *Adapter
	Log           zerolog.Logger
	router        *mux.Router
}

func (s *server) routes() {
	r := mux.NewRouter()
	r.HandleFunc("/{collection}", s.handleList).Methods("GET")
	r.HandleFunc("/{collection}", s.handleCreate).Methods("POST")
	r.HandleFunc("/{collection}/_aggregate", s.handleAggregate).Methods("POST")
	r.HandleFunc("/{collection}/_query", s.handleQuery).Methods("POST")
	r.HandleFunc("/{collection}/{id}", s.handleGet).Methods("GET")
	r.HandleFunc("/{collection}/{id}", s.handleUpdate).Methods("PUT", "PATCH")
	r.HandleFunc("/{collection}/{id}", s.handleDelete).Methods("DELETE")
	s.router = r
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *server) authenticate(r *http.Request) (api.User, error) {
	if s.Authenticator == nil {
		return api.User{}, nil
	}

	return s.Authenticator.Authenticate(r)
}

//authorize authenticates the caller and checks the collection's access rules.
//When no collections are configured, every collection is reachable; when some
//are, unknown collections are not found.
func (s *server) authorize(r *http.Request, collection string, method rules.Method) (api.User, error) {

	user, err := s.authenticate(r)
	if err != nil {
		return user, err
	}

	var collectionRules []rules.Rule
	if len(s.Collections) > 0 {
		def, ok := s.Collections[collection]
		if !ok {
			return user, notFoundError{Collection: collection}
		}
		collectionRules = def.Rules
	}

	ok, err := s.RuleChecker.Check(collectionRules, collection, user, method)
	if err != nil {
		return user, err
	}
	if !ok {
		return user, notAuthorizedError{Collection: collection}
	}

	return user, nil
}

func getPayload(r *http.Request, payload interface{}) error {
	if r.Body != nil {
		defer r.Body.Close()
		d := json.NewDecoder(r.Body)
		err := d.Decode(&payload)
		if err != nil && err != io.EOF {
			return badRequest(errors.Wrap(err, "Unable to decode JSON body").Error())
		}
	}
	return nil
}

func (s *server) handleCreate(w http.ResponseWriter, r *http.Request) {

	collection := mux.Vars(r)["collection"]

	if _, err := s.authorize(r, collection, rules.WRITE); err != nil {
		s.handleError(w, r, err)
		return
	}

	payload := make(api.Document)
	if err := getPayload(r, &payload); err != nil {
		s.handleError(w, r, err)
		return
	}

	id, err := s.Adapter.Create(r.Context(), collection, payload)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	s.respond(w, r, api.Document{api.IDField: id}, http.StatusCreated)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {

	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]

	if _, err := s.authorize(r, collection, rules.READ); err != nil {
		s.handleError(w, r, err)
		return
	}

	doc, err := s.Adapter.Get(r.Context(), collection, api.Filter{api.IDField: api.Eq(id)})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if doc == nil {
		s.handleError(w, r, notFoundError{Collection: collection, ID: id})
		return
	}

	s.respond(w, r, doc, http.StatusOK)
}

//reserved query parameters of the list route; everything else becomes an
//equality filter on the matching field
var reservedParams = map[string]bool{
	"limit":   true,
	"skip":    true,
	"orderBy": true,
	"count":   true,
	"print":   true,
	"auth":    true,
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {

	collection := mux.Vars(r)["collection"]

	if _, err := s.authorize(r, collection, rules.READ); err != nil {
		s.handleError(w, r, err)
		return
	}

	q := r.URL.Query()

	filter := make(api.Filter)
	for key, values := range q {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		filter[key] = api.Eq(values[0])
	}

	if q.Get("count") == "true" {
		n, err := s.Adapter.Count(r.Context(), collection, filter)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		s.respond(w, r, api.Document{"count": n}, http.StatusOK)
		return
	}

	opts, err := queryOptions(q.Get("limit"), q.Get("skip"), q.Get("orderBy"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	docs, err := s.Adapter.GetMany(r.Context(), collection, filter, opts)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if docs == nil {
		docs = []api.Document{}
	}

	s.respond(w, r, docs, http.StatusOK)
}

func queryOptions(limit, skip, orderBy string) (api.QueryOptions, error) {

	var opts api.QueryOptions

	if len(limit) > 0 {
		n, err := strconv.ParseInt(limit, 10, 64)
		if err != nil || n < 0 {
			return opts, badRequest("invalid limit")
		}
		opts.Limit = n
	}

	if len(skip) > 0 {
		n, err := strconv.ParseInt(skip, 10, 64)
		if err != nil || n < 0 {
			return opts, badRequest("invalid skip")
		}
		opts.Skip = n
	}

	if len(orderBy) > 0 {
		for _, field := range strings.Split(orderBy, ",") {
			if strings.HasPrefix(field, "-") {
				opts.Sort = append(opts.Sort, api.Desc(field[1:]))
			} else {
				opts.Sort = append(opts.Sort, api.Asc(field))
			}
		}
	}

	return opts, nil
}

//handleQuery is the structured form of the list route: the body carries the
//filter, sort and window as JSON, decoded through the boundary decoders so
//membership constraints and direction pairs are available, unlike the flat
//query-parameter form.
func (s *server) handleQuery(w http.ResponseWriter, r *http.Request) {

	collection := mux.Vars(r)["collection"]

	if _, err := s.authorize(r, collection, rules.READ); err != nil {
		s.handleError(w, r, err)
		return
	}

	var payload struct {
		Filter map[string]interface{} `json:"filter"`
		Sort   []interface{}          `json:"sort"`
		Limit  int64                  `json:"limit"`
		Skip   int64                  `json:"skip"`
	}
	if err := getPayload(r, &payload); err != nil {
		s.handleError(w, r, err)
		return
	}

	filter, err := api.ParseFilter(payload.Filter)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	sort, err := api.ParseSort(payload.Sort)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	docs, err := s.Adapter.GetMany(r.Context(), collection, filter, api.QueryOptions{
		Sort:  sort,
		Limit: payload.Limit,
		Skip:  payload.Skip,
	})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if docs == nil {
		docs = []api.Document{}
	}

	s.respond(w, r, docs, http.StatusOK)
}

func (s *server) handleUpdate(w http.ResponseWriter, r *http.Request) {

	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]

	if _, err := s.authorize(r, collection, rules.WRITE); err != nil {
		s.handleError(w, r, err)
		return
	}

	payload := make(map[string]interface{})
	if err := getPayload(r, &payload); err != nil {
		s.handleError(w, r, err)
		return
	}

	update, err := api.ParseUpdate(payload)
	if err != nil {
		s.handleError(w, r, err)
		return
	}

	affected, err := s.Adapter.Update(r.Context(), collection, api.Filter{api.IDField: api.Eq(id)}, update)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if !affected {
		s.handleError(w, r, notFoundError{Collection: collection, ID: id})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {

	vars := mux.Vars(r)
	collection, id := vars["collection"], vars["id"]

	if _, err := s.authorize(r, collection, rules.DELETE); err != nil {
		s.handleError(w, r, err)
		return
	}

	affected, err := s.Adapter.Delete(r.Context(), collection, api.Filter{api.IDField: api.Eq(id)})
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if !affected {
		s.handleError(w, r, notFoundError{Collection: collection, ID: id})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleAggregate(w http.ResponseWriter, r *http.Request) {

	collection := mux.Vars(r)["collection"]

	if _, err := s.authorize(r, collection, rules.READ); err != nil {
		s.handleError(w, r, err)
		return
	}

	var pipeline []api.Document
	if err := getPayload(r, &pipeline); err != nil {
		s.handleError(w, r, err)
		return
	}

	docs, err := s.Adapter.Aggregate(r.Context(), collection, pipeline)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if docs == nil {
		docs = []api.Document{}
	}

	s.respond(w, r, docs, http.StatusOK)
}

func (s *server) respond(w http.ResponseWriter, r *http.Request, data interface{}, statusCode int) {

	var b []byte
	var err error
	if r.FormValue("print") == "pretty" {
		b, err = json.MarshalIndent(data, "", "  ")
	} else {
		b, err = json.Marshal(data)
	}
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	b = append(b, '\n')

	// Handle ETag / If-None-Match
	h := sha1.Sum(b)
	etag := `"` + hex.EncodeToString(h[:]) + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}

func (s *server) handleError(w http.ResponseWriter, r *http.Request, err error) {

	s.Log.Warn().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")

	cause := errors.Cause(err)

	if IsBadRequest(cause) || IsTranslationAmbiguity(cause) {
		http.Error(w, cause.Error(), http.StatusBadRequest)
		return
	}

	if IsNotAuthorized(cause) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if IsNotFound(cause) {
		http.Error(w, "Data not found", http.StatusNotFound)
		return
	}

	if IsUnsupported(cause) {
		http.Error(w, "Not supported by the active backend", http.StatusNotImplemented)
		return
	}

	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

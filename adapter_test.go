package polystore

import (
	"context"
	"testing"

	"github.com/xdbsoft/polystore/api"
)

func TestNew_UnknownBackend(t *testing.T) {

	_, err := New(Config{Backend: "cassandra"})
	if err == nil {
		t.Fatal("Expected an error for an unknown backend")
	}
	if !IsConfiguration(err) {
		t.Errorf("Expected a configuration error, got %v", err)
	}
}

func TestConnect_MissingSettings(t *testing.T) {

	cases := []struct {
		name string
		cfg  Config
	}{
		{"mongo without url", Config{Backend: BackendMongo}},
		{"postgres without connection string", Config{Backend: BackendPostgres}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a, err := New(c.cfg)
			if err != nil {
				t.Fatal(err)
			}
			err = a.Connect(context.Background())
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !IsConfiguration(err) {
				t.Errorf("Expected a configuration error, got %v", err)
			}
		})
	}
}

func TestAdapter_NotConnected(t *testing.T) {

	a, err := New(Config{Backend: BackendMongo})
	if err != nil {
		t.Fatal(err)
	}

	_, err = a.Get(context.Background(), "test", api.Filter{api.IDField: api.Eq("doc1")})
	if err == nil {
		t.Fatal("Expected an error before Connect")
	}
	if !IsBadRequest(err) {
		t.Errorf("Expected a bad request error, got %v", err)
	}
}

func TestAdapter_Lifecycle(t *testing.T) {

	ctx := context.Background()
	mock := &mockedStore{}
	a := connectedAdapter(mock)

	id, err := a.Create(ctx, "test", api.Document{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	if id == "" {
		t.Fatal("Expected a backend assigned identifier")
	}

	doc, err := a.Get(ctx, "test", api.Filter{api.IDField: api.Eq(id)})
	if err != nil {
		t.Fatal(err)
	}
	if doc == nil {
		t.Fatal("Expected the created document")
	}
	if doc["k"] != "v" {
		t.Errorf("Unexpected document content: %v", doc)
	}

	affected, err := a.Update(ctx, "test", api.Filter{api.IDField: api.Eq(id)}, api.Set(map[string]interface{}{"k": "v2"}))
	if err != nil {
		t.Fatal(err)
	}
	if !affected {
		t.Fatal("Expected the update to match the document")
	}

	doc, err = a.Get(ctx, "test", api.Filter{api.IDField: api.Eq(id)})
	if err != nil {
		t.Fatal(err)
	}
	if doc["k"] != "v2" {
		t.Errorf("Expected the updated value, got %v", doc["k"])
	}

	affected, err = a.Delete(ctx, "test", api.Filter{api.IDField: api.Eq(id)})
	if err != nil {
		t.Fatal(err)
	}
	if !affected {
		t.Fatal("Expected the delete to match the document")
	}

	doc, err = a.Get(ctx, "test", api.Filter{api.IDField: api.Eq(id)})
	if err != nil {
		t.Fatal(err)
	}
	if doc != nil {
		t.Errorf("Expected absence after delete, got %v", doc)
	}

	n, err := a.Count(ctx, "test", nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Expected an empty collection, got %d documents", n)
	}
}

func TestAdapter_GetMany(t *testing.T) {

	ctx := context.Background()
	mock := &mockedStore{}
	a := connectedAdapter(mock)

	for _, name := range []string{"charlie", "alice", "bob"} {
		if _, err := a.Create(ctx, "test", api.Document{"name": name}); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := a.GetMany(ctx, "test", nil, api.QueryOptions{
		Sort:  []api.SortField{api.Asc("name")},
		Limit: 2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(docs))
	}
	if docs[0]["name"] != "alice" || docs[1]["name"] != "bob" {
		t.Errorf("Unexpected order: %v", docs)
	}

	docs, err = a.GetMany(ctx, "test", api.Filter{"name": api.In("alice", "charlie")}, api.QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Errorf("Expected 2 documents matching the membership filter, got %d", len(docs))
	}
}

func TestAdapter_AggregateUnsupported(t *testing.T) {

	mock := &mockedStore{NoAggregate: true}
	a := connectedAdapter(mock)

	docs, err := a.Aggregate(context.Background(), "test", []api.Document{{"$match": map[string]interface{}{"k": "v"}}})
	if err == nil {
		t.Fatal("Expected an error from a backend without aggregation")
	}
	if !IsUnsupported(err) {
		t.Errorf("Expected an unsupported error, got %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("Expected an empty result set, got %v", docs)
	}
}

func TestAdapter_DisconnectIdempotent(t *testing.T) {

	mock := &mockedStore{}
	a := connectedAdapter(mock)

	if err := a.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if !mock.Closed {
		t.Error("Expected the store to be closed")
	}

	mock.Closed = false
	if err := a.Disconnect(); err != nil {
		t.Fatal(err)
	}
	if mock.Closed {
		t.Error("Expected the second disconnect to be a no-op")
	}

	_, err := a.Get(context.Background(), "test", api.Filter{api.IDField: api.Eq("doc1")})
	if !IsBadRequest(err) {
		t.Errorf("Expected a bad request error after disconnect, got %v", err)
	}
}

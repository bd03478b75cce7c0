package main

import (
	"context"
	"log"
	"net/http"

	"github.com/xdbsoft/polystore"
	"github.com/xdbsoft/polystore/rules"
)

func main() {

	cfg := polystore.Config{
		Backend:             polystore.BackendMongo,
		OpenIDConnectIssuer: "https://login.okiapps.com/", // You may use any OIDC provider (Google, Github, or self hosted)
		Mongo: polystore.MongoConfig{
			URL:      "mongodb://localhost:27017",
			Database: "example",
		},
		Collections: []polystore.CollectionDefinition{
			{
				Name: "articles",
				Rules: []rules.Rule{
					{
						Collection: "articles",
						Allow: []rules.Allow{
							{
								Methods: []rules.Method{rules.READ},
							},
							{
								Methods: []rules.Method{rules.WRITE, rules.DELETE},
								If:      `user.role == "editor" || user.role == "admin"`,
							},
						},
					},
				},
			},
		},
	}

	s, err := polystore.Server(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	http.Handle("/", s)

	log.Fatal(http.ListenAndServe(":8080", nil))
}

package api

import (
	"net/http"
)

//User represents an authenticated caller. Role carries the caller's access
//level and is available to access rule conditions.
type User struct {
	ID    string
	Name  string
	Email string
	Role  string
}

//Authenticator describes the interface that a service authenticating an HTTP request should implement
type Authenticator interface {
	Authenticate(r *http.Request) (User, error)
}

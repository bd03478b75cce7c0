package polystore

import (
	"fmt"

	"github.com/pkg/errors"
)

//IsNotFound returns whether the error cause is that something was not found
func IsNotFound(err error) bool {
	nfe, ok := errors.Cause(err).(NotFound)
	return ok && nfe.IsNotFound()
}

//NotFound is the interface that wraps the IsNotFound method
type NotFound interface {
	IsNotFound() bool
}

//IsNotAuthorized returns whether the error cause is that there was an attempt to perform a not authorized action
func IsNotAuthorized(err error) bool {
	nae, ok := errors.Cause(err).(NotAuthorized)
	return ok && nae.IsNotAuthorized()
}

//NotAuthorized is the interface that wraps the IsNotAuthorized method
type NotAuthorized interface {
	IsNotAuthorized() bool
}

//IsBadRequest returns whether the error cause is that the provided inputs are incorrect
func IsBadRequest(err error) bool {
	bre, ok := errors.Cause(err).(BadRequest)
	return ok && bre.IsBadRequest()
}

//BadRequest is the interface that wraps the IsBadRequest method
type BadRequest interface {
	IsBadRequest() bool
}

//IsConfiguration returns whether the error cause is a missing or invalid
//setting for the selected backend. Such errors are fatal at startup and are
//never retried.
func IsConfiguration(err error) bool {
	ce, ok := errors.Cause(err).(Configuration)
	return ok && ce.IsConfiguration()
}

//Configuration is the interface that wraps the IsConfiguration method
type Configuration interface {
	IsConfiguration() bool
}

//IsTranslationAmbiguity returns whether the error cause is a filter, sort or
//update shape the translators do not recognize. Ambiguous shapes are rejected
//at the decode boundary rather than silently treated as equality.
func IsTranslationAmbiguity(err error) bool {
	tae, ok := errors.Cause(err).(TranslationAmbiguity)
	return ok && tae.IsTranslationAmbiguity()
}

//TranslationAmbiguity is the interface that wraps the IsTranslationAmbiguity method
type TranslationAmbiguity interface {
	IsTranslationAmbiguity() bool
}

//IsUnsupported returns whether the error cause is an operation the active
//backend has no faithful equivalent for, such as an aggregation pipeline on
//the relational backend.
func IsUnsupported(err error) bool {
	ue, ok := errors.Cause(err).(Unsupported)
	return ok && ue.IsUnsupported()
}

//Unsupported is the interface that wraps the IsUnsupported method
type Unsupported interface {
	IsUnsupported() bool
}

type badRequest string

func (err badRequest) IsBadRequest() bool {
	return true
}
func (err badRequest) Error() string {
	return string(err)
}

type configurationError string

func (err configurationError) IsConfiguration() bool {
	return true
}
func (err configurationError) Error() string {
	return string(err)
}

type notAuthorizedError struct {
	Collection string
}

func (err notAuthorizedError) Error() string {
	return fmt.Sprintf("Not authorized to access '%s'", err.Collection)
}

func (err notAuthorizedError) IsNotAuthorized() bool {
	return true
}

type notFoundError struct {
	Collection string
	ID         string
}

func (err notFoundError) Error() string {
	return fmt.Sprintf("Target not found: '%s/%s'", err.Collection, err.ID)
}

func (err notFoundError) IsNotFound() bool {
	return true
}

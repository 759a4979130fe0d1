package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind names an error class of the harness taxonomy.
type Kind string

const (
	KindNavigation       Kind = "NavigationError"
	KindMissingEntity    Kind = "MissingEntityError"
	KindForbiddenContent Kind = "ForbiddenContentError"
	KindUnhandledPage    Kind = "UnhandledPageError"
	KindLocatorNotFound  Kind = "LocatorNotFound"
	KindUnknown          Kind = "Error"
)

// NavigationError is returned when the Target System cannot be reached or answers too slowly.
type NavigationError struct {
	URL string
	Err error
}

func NewNavigationError(url string, err error) *NavigationError {
	return &NavigationError{URL: url, Err: err}
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("failed to navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// MissingEntityError lists every expected identifier absent from a view.
type MissingEntityError struct {
	View    string
	Missing []string
}

func NewMissingEntityError(view string, missing ...string) *MissingEntityError {
	return &MissingEntityError{View: view, Missing: missing}
}

// ID returns the first missing identifier.
func (e *MissingEntityError) ID() string {
	if len(e.Missing) == 0 {
		return ""
	}
	return e.Missing[0]
}

func (e *MissingEntityError) Error() string {
	return fmt.Sprintf("view %s is missing %d expected entities: %s", e.View, len(e.Missing), strings.Join(e.Missing, ", "))
}

// ForbiddenContentError is returned when a known bad string is rendered.
type ForbiddenContentError struct {
	View     string
	Pattern  string
	Category string
}

func NewForbiddenContentError(view, pattern, category string) *ForbiddenContentError {
	return &ForbiddenContentError{View: view, Pattern: pattern, Category: category}
}

func (e *ForbiddenContentError) Error() string {
	return fmt.Sprintf("view %s contains forbidden %s pattern %q", e.View, e.Category, e.Pattern)
}

// UnhandledPageError is an uncaught client-side error no suppression rule matched.
type UnhandledPageError struct {
	Message string
}

func NewUnhandledPageError(message string) *UnhandledPageError {
	return &UnhandledPageError{Message: message}
}

func (e *UnhandledPageError) Error() string {
	return fmt.Sprintf("uncaught page error: %s", e.Message)
}

// LocatorNotFoundError is returned when no locator strategy matched a label.
type LocatorNotFoundError struct {
	Label      string
	Strategies []string
}

func NewLocatorNotFoundError(label string, strategies ...string) *LocatorNotFoundError {
	return &LocatorNotFoundError{Label: label, Strategies: strategies}
}

func (e *LocatorNotFoundError) Error() string {
	return fmt.Sprintf("no element matches %q (tried: %s)", e.Label, strings.Join(e.Strategies, ", "))
}

type ResourceNotFoundError struct {
	Resource string
	ID       string
}

func NewResourceNotFoundError(resource, id string) *ResourceNotFoundError {
	return &ResourceNotFoundError{Resource: resource, ID: id}
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

func IsNavigationError(err error) bool {
	var e *NavigationError
	return errors.As(err, &e)
}

func IsMissingEntityError(err error) bool {
	var e *MissingEntityError
	return errors.As(err, &e)
}

func IsForbiddenContentError(err error) bool {
	var e *ForbiddenContentError
	return errors.As(err, &e)
}

func IsUnhandledPageError(err error) bool {
	var e *UnhandledPageError
	return errors.As(err, &e)
}

func IsLocatorNotFoundError(err error) bool {
	var e *LocatorNotFoundError
	return errors.As(err, &e)
}

// KindOf classifies err. Unclassified errors (including nil) return KindUnknown.
func KindOf(err error) Kind {
	switch {
	case IsUnhandledPageError(err):
		return KindUnhandledPage
	case IsNavigationError(err):
		return KindNavigation
	case IsMissingEntityError(err):
		return KindMissingEntity
	case IsForbiddenContentError(err):
		return KindForbiddenContent
	case IsLocatorNotFoundError(err):
		return KindLocatorNotFound
	default:
		return KindUnknown
	}
}

package app

import (
	"errors"

	"github.com/weibeld/github-projects-dashboard/internal/auth"
	"github.com/weibeld/github-projects-dashboard/internal/cache"
	"github.com/weibeld/github-projects-dashboard/internal/database"
	"github.com/weibeld/github-projects-dashboard/internal/github"
	"github.com/weibeld/github-projects-dashboard/internal/models"
	columnservice "github.com/weibeld/github-projects-dashboard/internal/services/column"
	labelservice "github.com/weibeld/github-projects-dashboard/internal/services/label"
	"github.com/weibeld/github-projects-dashboard/internal/services/mutation"
	projectservice "github.com/weibeld/github-projects-dashboard/internal/services/project"
	"github.com/weibeld/github-projects-dashboard/internal/view"
)

// Application-level errors
var (
	ErrReloadInProgress = errors.New("a reload is already in progress")
	ErrNotLoaded        = errors.New("board not loaded")
)

// ErrorKind groups errors by how an outer surface should report them.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

var notFound = []error{
	database.ErrNotFound,
	columnservice.ErrColumnNotFound,
	labelservice.ErrLabelNotFound,
	labelservice.ErrProjectNotFound,
	projectservice.ErrProjectNotFound,
	projectservice.ErrColumnNotFound,
}

var conflicts = []error{
	database.ErrConflict,
	columnservice.ErrDuplicateTitle,
	labelservice.ErrDuplicateTitle,
	ErrReloadInProgress,
}

var invalid = []error{
	columnservice.ErrEmptyTitle,
	columnservice.ErrTitleTooLong,
	columnservice.ErrInvalidSort,
	columnservice.ErrSystemColumn,
	columnservice.ErrInsertAfterClosed,
	models.ErrAlreadyFirstColumn,
	models.ErrAlreadyLastColumn,
	labelservice.ErrEmptyTitle,
	labelservice.ErrTitleTooLong,
	labelservice.ErrInvalidColor,
	labelservice.ErrInvalidTextColor,
	view.ErrInvalidQuery,
}

// Classify maps err onto an ErrorKind. Auth wins over everything else since
// the session is gone either way.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, github.ErrAuthExpired), errors.Is(err, auth.ErrNotAuthenticated):
		return KindAuth
	case isAny(err, notFound):
		return KindNotFound
	case isAny(err, conflicts):
		return KindConflict
	case errors.Is(err, database.ErrUnavailable), errors.Is(err, github.ErrTransport),
		errors.Is(err, ErrNotLoaded), errors.Is(err, cache.ErrNotLoaded):
		return KindUnavailable
	case mutation.IsRejected(err), isAny(err, invalid):
		return KindValidation
	default:
		return KindInternal
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

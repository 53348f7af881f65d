// Package itemuri implements the four-part content item reference used
// throughout the editor: id, language, version and database. A reference
// serializes to a single token ("item://database/id?lang=..&ver=..") and to
// the query string parameters of an editor activation request.
package itemuri

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// VersionLatest selects the latest version of an item.
const VersionLatest = 0

const scheme = "item"

// Query string parameter names of an activation request.
const (
	ParamID       = "sc_itemid"
	ParamLanguage = "sc_lang"
	ParamVersion  = "sc_version"
	ParamDatabase = "sc_database"
)

// ErrNoItemReference is returned when an activation query string does not
// carry a parseable item reference.
var ErrNoItemReference = errors.New("itemuri: query string carries no valid item reference")

// ItemUri identifies one language/version projection of one item in one
// database. Two references point at the same item iff ID and Database match;
// language and version may differ between renders of the same item.
type ItemUri struct {
	ID       uuid.UUID
	Language string
	Version  int // VersionLatest (0) selects the latest version
	Database string
}

// New returns a reference to the given projection.
func New(id uuid.UUID, language string, version int, database string) *ItemUri {
	return &ItemUri{ID: id, Language: language, Version: version, Database: database}
}

// String serializes the reference to its token form. Parse is the exact
// inverse for every token String produces.
func (u *ItemUri) String() string {
	return fmt.Sprintf("%s://%s/%s?lang=%s&ver=%d", scheme, u.Database, u.ID, url.QueryEscape(u.Language), u.Version)
}

// Query returns the reference as activation query string parameters.
func (u *ItemUri) Query() url.Values {
	values := url.Values{}
	values.Set(ParamID, u.ID.String())
	values.Set(ParamLanguage, u.Language)
	values.Set(ParamVersion, strconv.Itoa(u.Version))
	values.Set(ParamDatabase, u.Database)
	return values
}

// SameItem reports whether both references point at the same item,
// disregarding language and version.
func (u *ItemUri) SameItem(other *ItemUri) bool {
	if u == nil || other == nil {
		return false
	}
	return u.ID == other.ID && u.Database == other.Database
}

// Parse parses a token produced by String. It returns nil for every malformed
// shape: wrong scheme, missing database, bad id, bad version. It never
// returns an error; callers must check for nil.
func Parse(token string) *ItemUri {
	rest, ok := strings.CutPrefix(token, scheme+"://")
	if !ok {
		return nil
	}
	database, rest, ok := strings.Cut(rest, "/")
	if !ok || database == "" {
		return nil
	}
	idPart, query, _ := strings.Cut(rest, "?")
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil
	}
	values, err := url.ParseQuery(query)
	if err != nil {
		return nil
	}
	version := VersionLatest
	if raw := values.Get("ver"); raw != "" {
		version, err = strconv.Atoi(raw)
		if err != nil || version < 0 {
			return nil
		}
	}
	return &ItemUri{
		ID:       id,
		Language: values.Get("lang"),
		Version:  version,
		Database: database,
	}
}

// ParseQuery reads a reference from activation query string parameters.
// Unlike Parse it returns an error: a load without a valid reference is the
// one unrecoverable bootstrap failure and the caller redirects to the error
// page.
func ParseQuery(values url.Values) (*ItemUri, error) {
	id, err := uuid.Parse(values.Get(ParamID))
	if err != nil {
		return nil, ErrNoItemReference
	}
	database := values.Get(ParamDatabase)
	if database == "" {
		return nil, ErrNoItemReference
	}
	version := VersionLatest
	if raw := values.Get(ParamVersion); raw != "" {
		version, err = strconv.Atoi(raw)
		if err != nil || version < 0 {
			return nil, ErrNoItemReference
		}
	}
	return &ItemUri{
		ID:       id,
		Language: values.Get(ParamLanguage),
		Version:  version,
		Database: database,
	}, nil
}

// Package classify tells user-authored ad-hoc relationship names apart from
// the ones the platform generates for page type fields.
package classify

import (
	"strings"

	"github.com/emrgen/relstage/internal/model"
	"github.com/google/uuid"
)

// IsCustomAdHoc reports whether name is an ad-hoc relationship name created
// by a user. Generated names embed a GUID after the first underscore of the
// code name, e.g. "pagetype_4f1c...". Unless the whole remainder parses as a
// non-empty GUID the name is treated as custom, so this is a heuristic.
func IsCustomAdHoc(name *model.RelationshipName) bool {
	if name == nil || !name.IsAdHoc {
		return false
	}

	_, token, found := strings.Cut(name.Name, "_")
	if !found {
		return true
	}

	guid, err := uuid.Parse(token)
	if err != nil {
		return true
	}

	return guid == uuid.Nil
}

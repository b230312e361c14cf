package payload

import (
	"strings"

	"github.com/google/uuid"
)

// TranslationTable is the table that maps identifiers used inside the
// payload to globally unique identifiers, so the receiving server can find
// its own copy of each referenced object.
const TranslationTable = "ObjectTranslation"

const (
	translationID         = "ID"
	translationObjectType = "ObjectType"
	translationGUID       = "GUID"
)

// AddTranslation records that id of objectType is known globally as guid.
// Duplicate entries are ignored.
func (d *DataSet) AddTranslation(objectType string, id int, guid uuid.UUID) error {
	t, ok := d.Table(TranslationTable)
	if !ok {
		var err error
		t, err = NewTable(TranslationTable, translationID, translationObjectType, translationGUID)
		if err != nil {
			return err
		}
		if err := d.Add(t); err != nil {
			return err
		}
	}

	if _, found := d.TranslationGUID(objectType, id); found {
		return nil
	}
	return t.AddRow(id, strings.ToLower(objectType), guid.String())
}

// TranslationGUID looks up the GUID recorded for id of objectType.
func (d *DataSet) TranslationGUID(objectType string, id int) (uuid.UUID, bool) {
	t, ok := d.Table(TranslationTable)
	if !ok {
		return uuid.Nil, false
	}

	for row := 0; row < t.Len(); row++ {
		rowID, err := t.Int(row, translationID)
		if err != nil || rowID != id {
			continue
		}
		rowType, err := t.String(row, translationObjectType)
		if err != nil || !strings.EqualFold(rowType, objectType) {
			continue
		}
		guid, err := t.GUID(row, translationGUID)
		if err != nil {
			return uuid.Nil, false
		}
		return guid, true
	}
	return uuid.Nil, false
}

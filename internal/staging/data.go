package staging

import (
	"github.com/emrgen/relstage/internal/model"
	"github.com/emrgen/relstage/internal/payload"
)

// RelationshipNameTable is the payload table a relationship name is rendered into.
const RelationshipNameTable = "CMS_RelationshipName"

// RelationshipNameData renders a relationship name as a single-row data set.
func RelationshipNameData(name *model.RelationshipName) (*payload.DataSet, error) {
	table, err := payload.NewTable(RelationshipNameTable,
		"RelationshipNameID",
		"RelationshipName",
		"RelationshipDisplayName",
		"RelationshipNameIsAdHoc",
		"RelationshipGUID",
	)
	if err != nil {
		return nil, err
	}

	if err := table.AddRow(name.ID, name.Name, name.DisplayName, name.IsAdHoc, name.GUID.String()); err != nil {
		return nil, err
	}

	return payload.NewDataSet(table)
}

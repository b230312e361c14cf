package staging

import "github.com/emrgen/relstage/internal/model"

var objectVerbs = map[model.TaskType]string{
	model.TaskTypeCreateObject: "Create",
	model.TaskTypeUpdateObject: "Update",
	model.TaskTypeDeleteObject: "Delete",
}

type siteVerb struct {
	verb        string
	preposition string
}

var siteVerbs = map[model.TaskType]siteVerb{
	model.TaskTypeAddToSite:      {verb: "Add", preposition: "to"},
	model.TaskTypeRemoveFromSite: {verb: "Remove", preposition: "from"},
}

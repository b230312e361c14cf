package module

import "strings"

// Mode selects how node-category bindings travel between servers.
type Mode string

const (
	// ModeWithDocument ships bindings inside their node's document tasks.
	ModeWithDocument Mode = "WithDocument"
	// ModeStandalone ships each binding as an object task of its own.
	ModeStandalone Mode = "Standalone"
)

// ParseMode reads the node_category_staging_mode setting. An empty value
// selects ModeWithDocument.
func ParseMode(value string) Mode {
	value = strings.TrimSpace(value)
	if value == "" || value == string(ModeWithDocument) {
		return ModeWithDocument
	}
	return ModeStandalone
}

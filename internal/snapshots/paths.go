package snapshots

import (
	"fmt"
	"path/filepath"
)

// ExportPath builds the path to an export of kind for a given date.
func ExportPath(basePath string, kind Kind, date string) string {
	return filepath.Join(basePath, string(kind), fmt.Sprintf("%s.json", date))
}

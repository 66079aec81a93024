package output

import (
	"encoding/json"
	"io"
	"os"

	"github.com/law-makers/blocklist/pkg/models"
)

// WriteSummary encodes the run summary as indented JSON
func WriteSummary(w io.Writer, s *models.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// SaveSummary writes the run summary to filepath, replacing any previous file
func SaveSummary(s *models.Summary, filepath string) error {
	content, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, append(content, '\n'), 0644)
}

package ingestion

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadProjectFile reads a single project record from a JSON file
func LoadProjectFile(path string) (*ProjectRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read project file %s", path), Cause: err}
	}

	var rec ProjectRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to parse project file %s", path), Cause: err}
	}
	return &rec, nil
}

// LoadCandidateFile reads candidate records from a JSON file holding an array of records
func LoadCandidateFile(path string) ([]CandidateRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to read candidates file %s", path), Cause: err}
	}

	var records []CandidateRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &LoadError{Message: fmt.Sprintf("failed to parse candidates file %s", path), Cause: err}
	}
	return records, nil
}

package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Dataset file names written by WriteDataset and read by ReadDataset.
const (
	PeopleFile   = "people.json"
	ServicesFile = "services.json"
	LinksFile    = "links.json"
)

// WriteDataset serializes the dataset into people.json, services.json and links.json under dir.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, PeopleFile), dataset.People); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(dir, ServicesFile), dataset.Services); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, LinksFile), dataset.Links)
}

// ReadDataset loads a dataset previously written by WriteDataset. Missing
// files yield empty sections.
func ReadDataset(dir string) (Dataset, error) {
	var ds Dataset
	if err := readJSON(filepath.Join(dir, PeopleFile), &ds.People); err != nil {
		return Dataset{}, err
	}
	if err := readJSON(filepath.Join(dir, ServicesFile), &ds.Services); err != nil {
		return Dataset{}, err
	}
	if err := readJSON(filepath.Join(dir, LinksFile), &ds.Links); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, dst any) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

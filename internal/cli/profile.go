package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/goalplan/internal/domain"
	"github.com/alexanderramin/goalplan/internal/importer"
)

func loadProfile(path string) (*importer.Profile, error) {
	if path == "" {
		return nil, errors.New("--profile is required")
	}
	raw, err := importer.LoadProfile(path)
	if err != nil {
		return nil, err
	}
	p, err := importer.Convert(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// loadPlan reads a standalone plan file, or returns the profile's embedded
// plan when path is empty.
func loadPlan(path string, profile *importer.Profile) ([]domain.Task, error) {
	if path == "" {
		return profile.Plan, nil
	}
	raw, err := importer.LoadPlan(path)
	if err != nil {
		return nil, err
	}
	if errs := importer.ValidateTasks(raw); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w", path, errors.Join(errs...))
	}
	return importer.ConvertTasks(raw), nil
}

package cmd

import (
	"tectest/cases"
	"tectest/harness"
	"tectest/logging"
)

// loadRegistry returns the cases from manifest, or the built-in registry
// when manifest is empty
func loadRegistry(manifest string) (*harness.Registry, error) {
	if manifest == "" {
		return cases.Executable(), nil
	}
	reg, err := harness.LoadManifest(manifest)
	if err != nil {
		return nil, err
	}
	logging.Logger.Info("Loaded case manifest", "path", manifest, "cases", reg.Len())
	return reg, nil
}

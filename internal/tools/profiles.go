package tools

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// profilesFileName is looked up under configs/ next to the working directory or the executable
const profilesFileName = "profiles.yaml"

// LoadProfiles loads profile definitions from a YAML file mapping profile names to tool names
func LoadProfiles(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	profiles := make(map[string][]string)
	if err := yaml.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to parse profiles YAML: %w", err)
	}
	if _, ok := profiles["all"]; ok {
		return nil, fmt.Errorf("profile name %q is reserved", "all")
	}

	return profiles, nil
}

func init() {
	profilePath := findProfilesFile()
	if profilePath == "" {
		// Keep the hardcoded definitions
		return
	}

	profiles, err := LoadProfiles(profilePath)
	if err != nil {
		slog.Warn("Failed to load profiles, using defaults", "path", profilePath, "error", err)
		return
	}

	ProfileDefinitions = profiles
}

// findProfilesFile returns the first existing profiles file, or ""
func findProfilesFile() string {
	locations := []string{
		os.Getenv("PROFILES_CONFIG_PATH"),
		filepath.Join("configs", profilesFileName),
	}
	if exe, err := os.Executable(); err == nil {
		locations = append(locations, filepath.Join(filepath.Dir(exe), "configs", profilesFileName))
	}

	for _, path := range locations {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

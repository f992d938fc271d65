package core

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// GlobalConfig stores registered projects.
type GlobalConfig struct {
	Version  int                         `json:"version"`
	Projects map[string]GlobalProjectRef `json:"projects"`
}

// GlobalProjectRef stores project metadata in the global config.
type GlobalProjectRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".config", "skein")
	return filepath.Join(configDir, "skein-config.json"), nil
}

func ensureConfigDir() (string, error) {
	path, err := globalConfigPath()
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// ReadGlobalConfig reads the global config file if present.
func ReadGlobalConfig() (*GlobalConfig, error) {
	path, err := globalConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var config GlobalConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	if config.Projects == nil {
		config.Projects = map[string]GlobalProjectRef{}
	}
	return &config, nil
}

// WriteGlobalConfig writes the global config to disk.
func WriteGlobalConfig(config GlobalConfig) error {
	path, err := ensureConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// RegisterProject adds or updates a project in the global config.
func RegisterProject(projectID, projectName, projectRoot string) (*GlobalConfig, error) {
	config, err := ReadGlobalConfig()
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &GlobalConfig{Version: 1, Projects: map[string]GlobalProjectRef{}}
	}
	if config.Version == 0 {
		config.Version = 1
	}
	if config.Projects == nil {
		config.Projects = map[string]GlobalProjectRef{}
	}

	config.Projects[projectID] = GlobalProjectRef{
		Name: projectName,
		Path: projectRoot,
	}

	if err := WriteGlobalConfig(*config); err != nil {
		return nil, err
	}
	return config, nil
}

// FindProjectByRef resolves by ID or name.
func FindProjectByRef(ref string, config *GlobalConfig) (string, GlobalProjectRef, bool) {
	if config == nil {
		return "", GlobalProjectRef{}, false
	}
	if project, ok := config.Projects[ref]; ok {
		return ref, project, true
	}
	for id, project := range config.Projects {
		if project.Name == ref {
			return id, project, true
		}
	}
	return "", GlobalProjectRef{}, false
}

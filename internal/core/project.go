package core

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Project represents a skein project.
type Project struct {
	Root   string
	DBPath string
}

// DiscoverProject walks up from startDir to find a .skein directory.
func DiscoverProject(startDir string) (Project, error) {
	current := startDir
	if current == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		current = cwd
	}
	current, err := filepath.Abs(current)
	if err != nil {
		return Project{}, err
	}

	for {
		skeinDir := filepath.Join(current, ".skein")
		info, err := os.Stat(skeinDir)
		if err == nil && info.IsDir() {
			dbPath := filepath.Join(skeinDir, "skein.db")
			if _, err := os.Stat(dbPath); err != nil {
				return Project{}, fmt.Errorf("skein database not found. Run 'skein init' first")
			}
			return Project{Root: current, DBPath: dbPath}, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return Project{}, fmt.Errorf("not initialized. Run 'skein init' first")
		}
		current = parent
	}
}

// InitProject initializes a new skein project at dir.
func InitProject(dir string, force bool) (Project, error) {
	root := dir
	if root == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return Project{}, err
		}
		root = cwd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return Project{}, err
	}

	skeinDir := filepath.Join(root, ".skein")
	dbPath := filepath.Join(skeinDir, "skein.db")

	if info, err := os.Stat(skeinDir); err == nil && info.IsDir() && !force {
		if _, err := os.Stat(dbPath); err == nil {
			return Project{}, fmt.Errorf("already initialized. Use --force to reinitialize")
		}
	}

	if err := os.MkdirAll(skeinDir, 0o755); err != nil {
		return Project{}, err
	}
	EnsureSkeinGitignore(skeinDir)

	if force {
		if err := os.Remove(dbPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Project{}, err
		}
	}

	return Project{Root: root, DBPath: dbPath}, nil
}

// EnsureSkeinGitignore ensures .skein/.gitignore contains sqlite ignores.
func EnsureSkeinGitignore(skeinDir string) {
	gitignore := filepath.Join(skeinDir, ".gitignore")
	entries := []string{"*.db", "*.db-wal", "*.db-shm"}

	data, err := os.ReadFile(gitignore)
	if err != nil {
		_ = os.WriteFile(gitignore, []byte(strings.Join(entries, "\n")+"\n"), 0o644)
		return
	}
	content := string(data)

	present := map[string]bool{}
	for _, line := range strings.Split(content, "\n") {
		present[line] = true
	}

	var missing []string
	for _, entry := range entries {
		if !present[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return
	}
	if len(content) > 0 && content[len(content)-1] != '\n' {
		content += "\n"
	}
	content += strings.Join(missing, "\n") + "\n"
	_ = os.WriteFile(gitignore, []byte(content), 0o644)
}

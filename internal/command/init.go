package command

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adamavenir/skein/internal/core"
	"github.com/adamavenir/skein/internal/store"
	"github.com/spf13/cobra"
)

type initResult struct {
	Initialized    bool   `json:"initialized"`
	AlreadyExisted bool   `json:"already_existed"`
	RoomGUID       string `json:"room_guid"`
	RoomName       string `json:"room_name"`
	Path           string `json:"path"`
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize skein in current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			jsonMode, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			cwd, err := os.Getwd()
			if err != nil {
				return writeCommandError(cmd, err)
			}
			cwd, err = filepath.Abs(cwd)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if !force {
				if existing, derr := core.DiscoverProject(cwd); derr == nil && existing.Root == cwd {
					return reportExisting(cmd, existing, jsonMode)
				}
			}

			project, err := core.InitProject(cwd, force)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			s, err := store.Open(project)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer s.Close()
			if err := s.InitSchema(); err != nil {
				return writeCommandError(cmd, err)
			}

			ctx := cmd.Context()
			room, err := s.DefaultRoom(ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if room == nil {
				created, cerr := s.CreateRoom(ctx, filepath.Base(project.Root))
				if cerr != nil {
					return writeCommandError(cmd, cerr)
				}
				room = &created
				if err := s.SetConfig(ctx, "default_room", room.GUID); err != nil {
					return writeCommandError(cmd, err)
				}
			}

			projectID, err := s.GetConfig(ctx, "project_id")
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if projectID == "" {
				generated, gerr := core.GenerateGUID("prj")
				if gerr != nil {
					return writeCommandError(cmd, gerr)
				}
				projectID = generated
				if err := s.SetConfig(ctx, "project_id", projectID); err != nil {
					return writeCommandError(cmd, err)
				}
			}
			if _, err := core.RegisterProject(projectID, filepath.Base(project.Root), project.Root); err != nil {
				return writeCommandError(cmd, err)
			}

			result := initResult{
				Initialized: true,
				RoomGUID:    room.GUID,
				RoomName:    room.Name,
				Path:        project.Root,
			}
			if jsonMode {
				return json.NewEncoder(out).Encode(result)
			}
			fmt.Fprintf(out, "Initialized .skein/ with room %q\n", room.Name)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "reinitialize, replacing the existing database")

	return cmd
}

func reportExisting(cmd *cobra.Command, project core.Project, jsonMode bool) error {
	s, err := store.Open(project)
	if err != nil {
		return writeCommandError(cmd, err)
	}
	defer s.Close()
	if err := s.InitSchema(); err != nil {
		return writeCommandError(cmd, err)
	}

	room, err := s.DefaultRoom(cmd.Context())
	if err != nil {
		return writeCommandError(cmd, err)
	}

	result := initResult{
		Initialized:    true,
		AlreadyExisted: true,
		Path:           project.Root,
	}
	if room != nil {
		result.RoomGUID = room.GUID
		result.RoomName = room.Name
	}
	if jsonMode {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Already initialized: %s\n", project.Root)
	return nil
}

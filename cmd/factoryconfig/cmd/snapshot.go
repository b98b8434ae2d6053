/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssargent/factoryconfig/pkg/archive"
	"github.com/ssargent/factoryconfig/pkg/medium"
	"github.com/ssargent/factoryconfig/pkg/store"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Archive the raw medium image",
	Long: `Copy the whole medium into the snapshot archive (archive.dir).

The image is stored as read, even when it holds no valid configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		label, _ := cmd.Flags().GetString("label")

		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		a, err := s.openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := s.snapshot(a, label)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s saved (%d bytes, %s)\n", snap.ID, len(snap.Image), snap.Outcome)
		return nil
	},
}

// restoreCmd represents the restore command
var restoreCmd = &cobra.Command{
	Use:   "restore <id|latest>",
	Short: "Write an archived image back to the medium",
	Long: `Overwrite the medium with an archived image. The current contents are
archived first unless --no-backup is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		noBackup, _ := cmd.Flags().GetBool("no-backup")

		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		a, err := s.openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		snap, err := findSnapshot(a, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !noBackup {
			prev, err := s.snapshot(a, "before restore of "+snap.ID.String())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Snapshot %s saved\n", prev.ID)
		}

		res, err := s.restore(snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Restored %s (%d bytes): %s\n", snap.ID, len(snap.Image), res.Outcome.Describe())
		return statusError(res)
	},
}

// snapshotsCmd represents the snapshots command
var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List archived images",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		a, err := s.openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		snaps, err := a.List()
		if err != nil {
			return err
		}
		return writeSnapshots(cmd.OutOrStdout(), snaps)
	},
}

// snapshotsDeleteCmd represents the snapshots delete command
var snapshotsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an archived image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := archive.ParseID(args[0])
		if err != nil {
			return err
		}
		s, err := sessionFrom(cmd)
		if err != nil {
			return err
		}
		a, err := s.openArchive()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Delete(id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Snapshot %s deleted\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(snapshotsCmd)
	snapshotsCmd.AddCommand(snapshotsDeleteCmd)

	backupCmd.Flags().StringP("label", "l", "", "Free-form label stored with the snapshot")
	restoreCmd.Flags().Bool("no-backup", false, "Do not archive the current contents first")
}

func (s *session) openArchive() (*archive.Store, error) {
	open := archive.Open
	if container != nil {
		open = container.GetArchiveOpener()
	}
	a, err := open(s.cfg.Archive.Dir, s.log)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return a, nil
}

// snapshot archives the current medium image together with what a load
// makes of it.
func (s *session) snapshot(a *archive.Store, label string) (*archive.Snapshot, error) {
	m, err := s.openMedium()
	if err != nil {
		return nil, &exitError{code: exitMedium, err: err}
	}
	image, err := medium.ReadAll(m)
	if err != nil {
		return nil, &exitError{code: exitMedium, err: fmt.Errorf("read medium: %w", err)}
	}
	fc, res, err := s.load()
	if err != nil {
		return nil, err
	}

	snap := &archive.Snapshot{
		CreatedAt: time.Now().UTC(),
		Label:     label,
		Source:    s.cfg.Medium.Path,
		Outcome:   res.Outcome.String(),
		Image:     image,
	}
	if !res.Defaulted {
		snap.Serial = fc.Base.SerialNumber
		snap.Model = fc.Base.Model()
	}
	if snap.ID, err = a.Put(snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// restore writes snap back and reloads the medium.
func (s *session) restore(snap *archive.Snapshot) (*store.LoadResult, error) {
	m, err := s.openMedium()
	if err != nil {
		return nil, &exitError{code: exitMedium, err: err}
	}
	if err := medium.WriteAll(m, snap.Image); err != nil {
		return nil, &exitError{code: exitMedium, err: fmt.Errorf("write medium: %w", err)}
	}
	s.fc, s.res, s.loadErr = nil, nil, nil
	_, res, err := s.load()
	return res, err
}

// findSnapshot resolves an id or "latest".
func findSnapshot(a *archive.Store, ref string) (*archive.Snapshot, error) {
	if ref == "latest" {
		return a.Latest()
	}
	id, err := archive.ParseID(ref)
	if err != nil {
		return nil, err
	}
	return a.Get(id)
}

func writeSnapshots(w io.Writer, snaps []*archive.Snapshot) error {
	if len(snaps) == 0 {
		_, err := fmt.Fprintln(w, "No snapshots")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tOUTCOME\tSERIAL\tMODEL\tLABEL")
	for _, snap := range snaps {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
			snap.ID, snap.CreatedAt.Format(time.RFC3339), snap.Outcome, snap.Serial, snap.Model, snap.Label)
	}
	return tw.Flush()
}

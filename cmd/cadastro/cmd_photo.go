package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newPhotoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "photo",
		Short: "Manage personnel photos",
	}

	add := &cobra.Command{
		Use:   "add ID FILE",
		Short: "Store a photo and make it the person's current one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			rec, err := a.deps.PersonnelService.Get(ctx, id)
			if err != nil {
				return err
			}

			f, err := os.Open(args[1])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[1], err)
			}
			defer f.Close()

			info, err := a.deps.Photos.Save(ctx, id, filepath.Base(args[1]), f)
			if err != nil {
				return err
			}

			rec.Photo = a.deps.Photos.Abs(info)
			if _, err := a.deps.PersonnelService.Update(ctx, id, *rec); err != nil {
				_ = a.deps.Photos.Delete(ctx, id, info.ID)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", info.ID)
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list ID",
		Short: "List the stored photos of a person",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			files, err := a.deps.Photos.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, f := range files {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					f.ID, f.Name, f.ContentType, f.Size, f.CreatedAt.Format("02/01/2006 15:04"))
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:   "remove ID PHOTO_ID",
		Short: "Delete a stored photo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fileID, err := uuid.Parse(args[1])
			if err != nil {
				return fmt.Errorf("invalid photo id %q: %w", args[1], err)
			}

			info, err := a.deps.Photos.Info(ctx, id, fileID)
			if err != nil {
				return err
			}
			if err := a.deps.Photos.Delete(ctx, id, fileID); err != nil {
				return err
			}

			rec, err := a.deps.PersonnelService.Get(ctx, id)
			if err != nil {
				return err
			}
			if rec.Photo == a.deps.Photos.Abs(info) {
				rec.Photo = ""
				_, err = a.deps.PersonnelService.Update(ctx, id, *rec)
			}
			return err
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

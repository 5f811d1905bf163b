package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/cadastro-militares/internal/domain/personnel/repository"
)

// templateText reads a template body from --text or, when --file is set,
// from a file.
func templateText(text, file string) (string, error) {
	if file == "" {
		return text, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", file, err)
	}
	return string(data), nil
}

func newBulletinCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulletin",
		Short: "Manage bulletin templates and render them for a list of people",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range a.deps.Templates.Names() {
				marker := ""
				if a.deps.Templates.IsBuiltin(name) {
					marker = " (padrão)"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", name, marker)
			}
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show NAME",
		Short: "Print a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := a.deps.Templates.Text(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	var text, file string
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Save a new template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := templateText(text, file)
			if err != nil {
				return err
			}
			return a.deps.Templates.Add(args[0], body)
		},
	}
	add.Flags().StringVar(&text, "text", "", "Template text")
	add.Flags().StringVar(&file, "file", "", "Read the template text from a file")

	var newName, editText, editFile string
	edit := &cobra.Command{
		Use:   "edit NAME",
		Short: "Replace the text of a template, optionally renaming it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			body, err := templateText(editText, editFile)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("text") && editFile == "" {
				if body, err = a.deps.Templates.Text(name); err != nil {
					return err
				}
			}
			target := name
			if newName != "" {
				target = newName
			}
			return a.deps.Templates.Edit(name, target, body)
		},
	}
	edit.Flags().StringVar(&newName, "name", "", "New template name")
	edit.Flags().StringVar(&editText, "text", "", "New template text")
	edit.Flags().StringVar(&editFile, "file", "", "Read the new template text from a file")

	remove := &cobra.Command{
		Use:   "remove NAME",
		Short: "Delete a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.deps.Templates.Remove(args[0])
		},
	}

	render := &cobra.Command{
		Use:   "render NAME ID...",
		Short: "Write a template followed by the listed people",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			people := make([]repository.Record, 0, len(ids))
			for _, id := range ids {
				rec, err := a.deps.PersonnelService.Get(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("id %d: %w", id, err)
				}
				people = append(people, *rec)
			}

			out, err := a.deps.Templates.Render(args[0], people)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.AddCommand(list, show, add, edit, remove, render)
	return cmd
}

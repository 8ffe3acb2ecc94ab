package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/cryptosafe/internal/app"
	"github.com/MKhiriev/cryptosafe/internal/vault"
	"github.com/MKhiriev/cryptosafe/models"
)

const maskedSecret = "********"

func parseEntryID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf(app.MsgInvalidEntryID, arg)
	}
	return id, nil
}

func entryError(id int64, err error) error {
	if errors.Is(err, vault.ErrNotFound) {
		return fmt.Errorf(app.MsgEntryNotFound, id)
	}
	return err
}

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Creates the vault and sets the master password",
		Long: `Creates the vault and sets the master password.

The master password must be at least 12 characters long and contain a digit.
It cannot be recovered.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			password, err := c.prompter.Password("New master password: ")
			if err != nil {
				return err
			}
			confirm, err := c.prompter.Password("Confirm master password: ")
			if err != nil {
				return err
			}
			if password != confirm {
				return errors.New(app.MsgPasswordsDoNotMatch)
			}

			if err = c.service().Setup(ctx, password); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Vault initialized at %s\n", c.cfg.Storage.Path)
			return nil
		},
	}
}

func (c *cli) addCmd() *cobra.Command {
	var in models.EntryInput

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Adds an entry; the password is prompted for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.unlock(ctx); err != nil {
				return err
			}

			password, err := c.prompter.Password("Entry password: ")
			if err != nil {
				return err
			}

			in.Title = args[0]
			in.Password = password

			id, err := c.service().AddEntry(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVarP(&in.Username, "username", "u", "", "Username or login")
	cmd.Flags().StringVar(&in.URL, "url", "", "Site URL")
	cmd.Flags().StringVar(&in.Notes, "notes", "", "Notes, stored encrypted")
	cmd.Flags().StringVar(&in.Tags, "tags", "", "Comma-separated tags")

	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lists entries, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := c.unlock(ctx); err != nil {
				return err
			}

			entries, err := c.service().ListEntries(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No entries")
				return nil
			}

			fmt.Fprintf(out, "%-6s %-30s %-24s %s\n", "ID", "TITLE", "USERNAME", "UPDATED")
			for _, e := range entries {
				fmt.Fprintf(out, "%-6d %-30s %-24s %s\n",
					e.ID, clip(e.Title, 30), clip(e.Username, 24), models.FormatTimestamp(e.UpdatedAt))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print entries as JSON")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Shows one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err = c.unlock(ctx); err != nil {
				return err
			}

			entry, err := c.service().RevealEntry(ctx, id)
			if err != nil {
				return entryError(id, err)
			}

			password, notes := maskedSecret, maskedSecret
			if reveal {
				password, notes = entry.Password, entry.Notes
			}
			if entry.Notes == "" {
				notes = ""
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:       %d\n", entry.ID)
			fmt.Fprintf(out, "Title:    %s\n", entry.Title)
			fmt.Fprintf(out, "Username: %s\n", entry.Username)
			fmt.Fprintf(out, "Password: %s\n", password)
			fmt.Fprintf(out, "URL:      %s\n", entry.URL)
			fmt.Fprintf(out, "Tags:     %s\n", entry.Tags)
			fmt.Fprintf(out, "Notes:    %s\n", notes)
			fmt.Fprintf(out, "Created:  %s\n", models.FormatTimestamp(entry.CreatedAt))
			fmt.Fprintf(out, "Updated:  %s\n", models.FormatTimestamp(entry.UpdatedAt))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "Print the password and notes in clear text")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var (
		title, username, url, notes, tags string
		changePassword                    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Changes the given fields of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			var upd models.EntryUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				upd.Title = &title
			}
			if flags.Changed("username") {
				upd.Username = &username
			}
			if flags.Changed("url") {
				upd.URL = &url
			}
			if flags.Changed("notes") {
				upd.Notes = &notes
			}
			if flags.Changed("tags") {
				upd.Tags = &tags
			}
			if upd.IsEmpty() && !changePassword {
				return errors.New(app.MsgNothingToChange)
			}

			ctx := cmd.Context()
			if err = c.unlock(ctx); err != nil {
				return err
			}

			if changePassword {
				password, err := c.prompter.Password("New entry password: ")
				if err != nil {
					return err
				}
				upd.Password = &password
			}

			if err = c.service().UpdateEntry(ctx, id, upd); err != nil {
				return entryError(id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&username, "username", "u", "", "New username")
	cmd.Flags().StringVar(&url, "url", "", "New URL")
	cmd.Flags().StringVar(&notes, "notes", "", "New notes")
	cmd.Flags().StringVar(&tags, "tags", "", "New tags")
	cmd.Flags().BoolVarP(&changePassword, "password", "p", false, "Prompt for a new password")

	return cmd
}

func (c *cli) rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Deletes an entry",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err = c.unlock(ctx); err != nil {
				return err
			}

			if err = c.service().DeleteEntry(ctx, id); err != nil {
				return entryError(id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		},
	}
}

func (c *cli) copyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copies an entry password to the clipboard until the timer expires",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseEntryID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if err = c.unlock(ctx); err != nil {
				return err
			}

			svc := c.service()
			if err = svc.CopyPassword(ctx, id); err != nil {
				return entryError(id, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Password copied, clearing in %ds (Ctrl+C clears now)\n", svc.Preferences().ClipboardTimeout)

			c.app.HoldClipboard(ctx)
			fmt.Fprintln(out, app.MsgClipboardCleared)
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func clip(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n-1]) + "…"
}

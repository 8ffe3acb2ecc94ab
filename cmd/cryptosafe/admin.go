package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/cryptosafe/internal/app"
	"github.com/MKhiriev/cryptosafe/internal/audit"
	"github.com/MKhiriev/cryptosafe/internal/store"
	"github.com/MKhiriev/cryptosafe/models"
)

func (c *cli) auditCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Shows the most recent audit records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := c.service().AuditTrail(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, records)
			}
			for _, r := range records {
				entry := "-"
				if r.EntryID != nil {
					entry = strconv.FormatInt(*r.EntryID, 10)
				}
				fmt.Fprintf(out, "%s  %-18s %-6s %s\n", models.FormatTimestamp(r.Timestamp), r.Action, entry, r.Details)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", audit.DefaultRecentLimit, "Maximum number of records")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print records as JSON")
	return cmd
}

func (c *cli) settingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Shows or changes the stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			prefs := c.service().LoadPreferences(cmd.Context())
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s = %d\n", models.SettingClipboardTimeout, prefs.ClipboardTimeout)
			fmt.Fprintf(out, "%s = %d\n", models.SettingAutoLockMinutes, prefs.AutoLockMinutes)
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Stores a preference (app_clipboard_timeout or app_auto_lock_minutes)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid value %q: not an integer", args[1])
			}

			ctx := cmd.Context()
			if err = c.unlock(ctx); err != nil {
				return err
			}

			svc := c.service()
			prefs := svc.Preferences()
			switch args[0] {
			case models.SettingClipboardTimeout:
				prefs.ClipboardTimeout = value
			case models.SettingAutoLockMinutes:
				prefs.AutoLockMinutes = value
			default:
				return fmt.Errorf(app.MsgUnknownSetting, args[0])
			}

			if err = svc.SetPreferences(ctx, prefs); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s = %d\n", args[0], value)
			return nil
		},
	}

	cmd.AddCommand(set)
	return cmd
}

func (c *cli) backupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backup <file>",
		Short: "Copies the vault database to a file",
		Long: `Copies the vault database to a file.

Entry secrets stay encrypted in the copy; the master password is needed to
read it after a restore.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.Storage().Backup(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Backup written to %s\n", args[0])
			return nil
		},
	}
}

func (c *cli) restoreCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "restore <file>",
		Short:       "Replaces the vault database with a backup",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationNoApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dst := c.cfg.Storage.Path

			if _, err := os.Stat(dst); err == nil && !force {
				return fmt.Errorf(app.MsgVaultExists, dst)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			if err := store.Restore(args[0], dst); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Vault restored from %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing vault")
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Prints build information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.build.String())
			return nil
		},
	}
}

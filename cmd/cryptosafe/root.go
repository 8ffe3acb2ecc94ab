// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/cryptosafe/internal/app"
	"github.com/MKhiriev/cryptosafe/internal/client"
	"github.com/MKhiriev/cryptosafe/internal/config"
	"github.com/MKhiriev/cryptosafe/internal/logger"
	"github.com/MKhiriev/cryptosafe/internal/service"
	"github.com/MKhiriev/cryptosafe/models"
)

// annotationNoApp marks commands that must not open the vault database.
const annotationNoApp = "cryptosafe/no-app"

type cli struct {
	root     *cobra.Command
	flags    *config.Flags
	prompter Prompter
	build    models.AppBuildInfo

	// appOptions are passed to client.NewApp; tests inject a clipboard.
	appOptions []client.Option

	cfg *config.Config
	log *logger.Logger
	app *client.App
}

func newCLI(prompter Prompter, build models.AppBuildInfo, opts ...client.Option) *cli {
	c := &cli{
		prompter:   prompter,
		build:      build,
		appOptions: opts,
	}

	c.root = &cobra.Command{
		Use:           "cryptosafe",
		Short:         "A local, encrypted password vault",
		Long:          `cryptosafe keeps credentials encrypted in a local SQLite database behind a master password.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
	}
	c.root.CompletionOptions.DisableDefaultCmd = true
	c.flags = config.RegisterFlags(c.root.PersistentFlags())

	c.root.AddCommand(
		c.initCmd(),
		c.addCmd(),
		c.listCmd(),
		c.showCmd(),
		c.editCmd(),
		c.rmCmd(),
		c.copyCmd(),
		c.auditCmd(),
		c.settingsCmd(),
		c.backupCmd(),
		c.restoreCmd(),
		c.versionCmd(),
	)

	return c
}

// execute runs the command line and always releases the vault afterwards,
// including when a command fails.
func (c *cli) execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(c.root.ErrOrStderr(), "Error:", err)
		if c.log != nil {
			c.log.Err(err).Str("func", "cli.execute").Msg(app.MsgCommandFailed)
		}
	}

	if c.app != nil {
		if closeErr := c.app.Close(context.WithoutCancel(ctx)); closeErr != nil {
			c.log.Err(closeErr).Str("func", "cli.execute").Msg("failed to close vault")
		}
		c.app = nil
	}
	return err
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.flags)
	if err != nil {
		return fmt.Errorf("error getting configs: %w", err)
	}
	c.cfg = cfg
	c.log = client.NewLogger(cfg.Log)
	c.log.Debug().Str("command", cmd.CommandPath()).Msg("starting")

	if cmd.Annotations[annotationNoApp] != "" || cmd.Name() == "help" {
		return nil
	}

	vaultApp, err := client.NewApp(cmd.Context(), cfg, c.log, c.appOptions...)
	if err != nil {
		return fmt.Errorf("cannot open vault: %w", err)
	}
	c.app = vaultApp
	return nil
}

func (c *cli) service() *service.VaultService {
	return c.app.Service()
}

// unlock asks for the master password and unlocks the vault.
func (c *cli) unlock(ctx context.Context) error {
	svc := c.service()

	initialized, err := svc.IsInitialized(ctx)
	if err != nil {
		return err
	}
	if !initialized {
		return errors.New(app.MsgNotInitialized)
	}

	password, err := c.prompter.Password("Master password: ")
	if err != nil {
		return err
	}

	if err = svc.Unlock(ctx, password); err != nil {
		if errors.Is(err, service.ErrCannotUnlock) {
			return errors.New(app.MsgCannotUnlock)
		}
		return err
	}
	return nil
}

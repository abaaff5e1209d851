package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/gossipnode/pkg/config"
	"github.com/DeBrosOfficial/gossipnode/pkg/logging"
)

func newValidateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check a config file and report every problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.resolveConfigPath()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}

			_, errs := config.ParseAll(raw)
			if len(errs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
				return nil
			}
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
			}
			return fmt.Errorf("%s: %d problem(s) found", path, len(errs))
		},
	}
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the normalized config document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				return err
			}
			out, err := config.Marshal(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func newInitCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := flags.resolveConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("failed to stat %s: %w", path, err)
			}

			if flags.configPath == "" {
				if _, err := config.EnsureConfigDir(); err != nil {
					return err
				}
			} else if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}

			out, err := config.Marshal(config.DefaultConfig())
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, out, 0600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the REST and P2P interfaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := flags.newLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer logger.Close()

			path, err := flags.resolveConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(path)
			if err != nil {
				logger.ComponentError(logging.ComponentConfig, "Failed to load configuration", zap.Error(err))
				return err
			}
			logger.ComponentInfo(logging.ComponentConfig, "Configuration loaded", zap.String("path", path))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runNode(ctx, logger, cfg)
		},
	}
}

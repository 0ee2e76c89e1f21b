// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mdhender/emptrack"
	"github.com/mdhender/emptrack/menu"
)

// settings are the resolved values of flags, environment and defaults.
type settings struct {
	DB       string `mapstructure:"db"`
	LogLevel string `mapstructure:"log_level"`
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emptrack",
		Short: "Maintain departments, roles and employees",
		Long: `emptrack shows a menu for listing departments, roles and employees,
adding new ones, and moving an employee to a different role.

The database file is created on first run and reused after that.`,
		Version:       emptrack.Version().String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMenu,
	}

	cmd.Flags().String("db", "company.db", "path to the company database file")
	cmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	return cmd
}

// loadSettings layers flags over EMPTRACK_* environment variables over defaults.
func loadSettings(cmd *cobra.Command) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix("EMPTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db", "company.db")
	v.SetDefault("log_level", "warn")

	if err := v.BindPFlag("db", cmd.Flags().Lookup("db")); err != nil {
		return settings{}, err
	}
	if err := v.BindPFlag("log_level", cmd.Flags().Lookup("log-level")); err != nil {
		return settings{}, err
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// databasePath makes the path absolute, as Ensure requires.
func databasePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	return filepath.Abs(path)
}

// prompterFor uses the terminal prompter only for a real stdin.
func prompterFor(in io.Reader, out io.Writer) menu.Prompter {
	inFile, inOK := in.(*os.File)
	outFile, outOK := out.(*os.File)
	if inOK && outOK {
		return menu.NewPrompter(inFile, outFile)
	}
	return menu.NewLinePrompter(in, out)
}

func runMenu(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(s.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	path, err := databasePath(s.DB)
	if err != nil {
		return fmt.Errorf("database path: %w", err)
	}

	ctx := cmd.Context()
	db, err := emptrack.Ensure(ctx, emptrack.Config{
		Path:                  path,
		Logger:                logger,
		AppVersion:            emptrack.Version().String(),
		RequiredSchemaVersion: emptrack.LatestSchemaVersion(),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	store := emptrack.NewStore(db, logger)
	defer store.Close()

	out := cmd.OutOrStdout()
	return menu.New(store, prompterFor(cmd.InOrStdin(), out), out, logger).Run(ctx)
}

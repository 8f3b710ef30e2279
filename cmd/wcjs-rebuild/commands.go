package main

import (
	"fmt"

	wcjsbuild "github.com/contriboss/wcjs-rebuild"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// resolvedConfig is the printable form of a resolved build configuration.
type resolvedConfig struct {
	Runtime        string `yaml:"runtime"`
	RuntimeVersion string `yaml:"runtime_version"`
	Arch           string `yaml:"arch,omitempty"`
	Debug          bool   `yaml:"debug"`
	Platform       string `yaml:"platform"`
	BuildSystem    string `yaml:"build_system"`
}

func (a *app) configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved build configuration",
		Long: `Print the build configuration after environment resolution and defaults.

An absent arch means cmake-js will target the host architecture.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := a.buildConfig()
			if err != nil {
				return err
			}

			system, err := a.buildSystem(cmd)
			if err != nil {
				return err
			}

			out, err := yaml.Marshal(resolvedConfig{
				Runtime:        config.Runtime,
				RuntimeVersion: config.RuntimeVersion,
				Arch:           config.Arch,
				Debug:          config.Debug,
				Platform:       a.platform,
				BuildSystem:    system.Name(),
			})
			if err != nil {
				return fmt.Errorf("failed to encode configuration: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

func (a *app) cleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove build artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			config, err := a.buildConfig()
			if err != nil {
				return err
			}

			system, err := a.buildSystem(cmd)
			if err != nil {
				return err
			}

			cleaner, ok := system.(wcjsbuild.Cleaner)
			if !ok {
				return fmt.Errorf("build system %s does not support clean", system.Name())
			}

			dir, err := config.WorkingDir()
			if err != nil {
				return err
			}

			if err := cleaner.Clean(cmd.Context(), config); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			a.logger(cmd).Info("cleaned", "dir", dir)
			return nil
		},
	}
}

func (a *app) toolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check-tools",
		Short: "Check that the tools needed for a build are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			system, err := a.buildSystem(cmd)
			if err != nil {
				return err
			}

			checker, ok := system.(wcjsbuild.ToolChecker)
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s declares no required tools\n", system.Name())
				return nil
			}

			out := cmd.OutOrStdout()
			for _, req := range checker.RequiredTools() {
				reqs := []wcjsbuild.ToolRequirement{req}
				status := "ok"
				switch {
				case req.Optional && len(wcjsbuild.MissingOptionalTools(reqs)) > 0:
					status = "missing (optional)"
				case !req.Optional && wcjsbuild.CheckRequiredTools(reqs) != nil:
					status = "missing"
				}
				fmt.Fprintf(out, "%-20s %-8s %s\n", req.Name, status, req.Purpose)
			}

			if err := checker.CheckTools(); err != nil {
				return &ExitError{Code: 1, Err: err}
			}
			return nil
		},
	}
}

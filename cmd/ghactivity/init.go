package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Afrawles/ghactivity/internal/config"
	"github.com/Afrawles/ghactivity/internal/wizard"
)

var (
	initPath  string
	initForce bool

	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a config file interactively",
		Long: `Asks for the GitHub user, where the token comes from and which report
files to write, then saves the answers as YAML (default ~/.ghactivity.yaml).`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with secrets redacted",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
)

func init() {
	initCmd.Flags().StringVar(&initPath, "path", "", "where to write the config file (default ~/.ghactivity.yaml)")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(initCmd, configCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := initPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	// Existing values seed the form; they are not validated until the user is done.
	current, err := loadConfig(false)
	if err != nil {
		return err
	}

	cfg, err := wizard.PromptConfig(*current)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.WriteFile(path, cfg, initForce); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Config written to %s\n\n", path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  ghactivity                     # today's activity")
	fmt.Fprintln(out, "  ghactivity --period last-week  # a named period")
	fmt.Fprintln(out, "  ghactivity config show         # check the merged settings")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	data, err := config.Marshal(cfg.Redacted())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# source: %s\n", used)
	} else {
		fmt.Fprintln(out, "# source: defaults and environment")
	}
	_, err = out.Write(data)
	return err
}

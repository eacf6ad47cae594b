// Package wizard provides the interactive prompts behind `ghactivity init`.
package wizard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/Afrawles/ghactivity/internal/config"
)

var userNamePattern = regexp.MustCompile(`^[A-Za-z0-9](?:[A-Za-z0-9]|-[A-Za-z0-9])*$`)

// PromptConfig asks for the settings a first run needs, starting from cfg.
func PromptConfig(cfg config.Config) (config.Config, error) {
	formats := append([]string(nil), cfg.Output.Formats...)
	var tokenSource string
	switch {
	case cfg.GitHub.TokenSecret != "":
		tokenSource = "secret"
	case cfg.GitHub.AccessToken != "":
		tokenSource = "token"
	default:
		tokenSource = "none"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("GitHub user name").
				Description("Whose activity feed to read").
				Value(&cfg.GitHub.UserName).
				Validate(validateUserName),

			huh.NewSelect[string]().
				Title("Access token").
				Options(
					huh.NewOption("Store a personal access token in the config file", "token"),
					huh.NewOption("Read it from GCP Secret Manager", "secret"),
					huh.NewOption("None (public events only)", "none"),
				).
				Value(&tokenSource),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Personal access token").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.GitHub.AccessToken).
				Validate(required("token")),
		).WithHideFunc(func() bool { return tokenSource != "token" }),
		huh.NewGroup(
			huh.NewInput().
				Title("Secret Manager secret").
				Description("projects/P/secrets/S, or a bare name with GOOGLE_CLOUD_PROJECT set").
				Value(&cfg.GitHub.TokenSecret).
				Validate(required("secret")),
		).WithHideFunc(func() bool { return tokenSource != "secret" }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Include private events by default?").
				Value(&cfg.GitHub.Private),

			huh.NewMultiSelect[string]().
				Title("Report files to write besides markdown").
				Options(huh.NewOptions("json", "html", "csv", "xlsx")...).
				Value(&formats),

			huh.NewInput().
				Title("Output directory").
				Value(&cfg.Output.Directory).
				Validate(required("output directory")),
		),
	)

	if err := form.Run(); err != nil {
		return cfg, fmt.Errorf("prompt cancelled: %w", err)
	}

	return applyTokenSource(cfg, tokenSource, formats), nil
}

// applyTokenSource clears the credential the user did not pick.
func applyTokenSource(cfg config.Config, source string, formats []string) config.Config {
	switch source {
	case "token":
		cfg.GitHub.TokenSecret = ""
	case "secret":
		cfg.GitHub.AccessToken = ""
	default:
		cfg.GitHub.AccessToken = ""
		cfg.GitHub.TokenSecret = ""
		cfg.GitHub.Private = false
	}
	cfg.GitHub.UserName = strings.TrimSpace(cfg.GitHub.UserName)
	cfg.GitHub.AccessToken = strings.TrimSpace(cfg.GitHub.AccessToken)
	cfg.GitHub.TokenSecret = strings.TrimSpace(cfg.GitHub.TokenSecret)
	cfg.Output.Formats = formats
	return cfg
}

func validateUserName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("user name is required")
	}
	if len(s) > 39 || !userNamePattern.MatchString(s) {
		return fmt.Errorf("%q is not a valid GitHub user name", s)
	}
	return nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

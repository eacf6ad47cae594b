package wizard

import (
	"reflect"
	"testing"

	"github.com/Afrawles/ghactivity/internal/config"
)

func TestValidateUserName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "octocat"},
		{name: "with hyphen", input: "octo-cat"},
		{name: "surrounding whitespace", input: "  octocat "},
		{name: "empty", input: "", wantErr: true},
		{name: "leading hyphen", input: "-octo", wantErr: true},
		{name: "trailing hyphen", input: "octo-", wantErr: true},
		{name: "double hyphen", input: "octo--cat", wantErr: true},
		{name: "underscore", input: "octo_cat", wantErr: true},
		{name: "too long", input: "a123456789012345678901234567890123456789", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUserName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateUserName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestApplyTokenSource(t *testing.T) {
	base := config.Config{
		GitHub: config.GitHubConfig{
			UserName:    " octo ",
			AccessToken: " tok ",
			TokenSecret: "gh-token",
			Private:     true,
		},
	}

	tests := []struct {
		name        string
		source      string
		wantToken   string
		wantSecret  string
		wantPrivate bool
	}{
		{"token", "token", "tok", "", true},
		{"secret", "secret", "", "gh-token", true},
		{"none", "none", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyTokenSource(base, tt.source, []string{"json"})
			if got.GitHub.AccessToken != tt.wantToken || got.GitHub.TokenSecret != tt.wantSecret {
				t.Fatalf("credentials = %q / %q", got.GitHub.AccessToken, got.GitHub.TokenSecret)
			}
			if got.GitHub.Private != tt.wantPrivate {
				t.Fatalf("Private = %v", got.GitHub.Private)
			}
			if got.GitHub.UserName != "octo" {
				t.Fatalf("UserName = %q", got.GitHub.UserName)
			}
			if !reflect.DeepEqual(got.Output.Formats, []string{"json"}) {
				t.Fatalf("Formats = %v", got.Output.Formats)
			}
		})
	}
}

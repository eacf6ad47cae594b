// Package secrets reads the GitHub token from GCP Secret Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

const fetchTimeout = 10 * time.Second

// ErrNoProject is returned when a bare secret name is given and no
// project can be found in the environment.
var ErrNoProject = errors.New("no GCP project set (GOOGLE_CLOUD_PROJECT, GCP_PROJECT or GCLOUD_PROJECT)")

// Fetcher reads a secret payload by path.
type Fetcher interface {
	FetchSecret(ctx context.Context, secretPath string) (string, error)
	Close() error
}

// SecretManagerClient wraps the GCP Secret Manager client
type SecretManagerClient struct {
	client    *secretmanager.Client
	projectID string
}

var _ Fetcher = (*SecretManagerClient)(nil)

// NewSecretManagerClient uses Application Default Credentials unless opts
// say otherwise. projectID may be empty when only full secret paths are used.
func NewSecretManagerClient(ctx context.Context, projectID string, opts ...option.ClientOption) (*SecretManagerClient, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create secret manager client: %w", err)
	}
	if projectID == "" {
		projectID = ProjectFromEnv()
	}
	return &SecretManagerClient{client: client, projectID: projectID}, nil
}

// ProjectFromEnv returns the first project id set in the usual GCP variables.
func ProjectFromEnv() string {
	for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

// FetchSecret returns the secret payload with surrounding whitespace removed.
// secretPath is one of
//   - projects/PROJECT_ID/secrets/SECRET_NAME/versions/VERSION
//   - projects/PROJECT_ID/secrets/SECRET_NAME (latest version)
//   - SECRET_NAME (project from the client)
func (c *SecretManagerClient) FetchSecret(ctx context.Context, secretPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	name, err := normalizeSecretPath(secretPath, c.projectID)
	if err != nil {
		return "", err
	}

	result, err := c.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}

	value := strings.TrimSpace(string(result.GetPayload().GetData()))
	if value == "" {
		return "", fmt.Errorf("secret %s is empty", name)
	}
	return value, nil
}

func normalizeSecretPath(secretPath, projectID string) (string, error) {
	secretPath = strings.Trim(strings.TrimSpace(secretPath), "/")
	if secretPath == "" {
		return "", errors.New("empty secret path")
	}

	if strings.HasPrefix(secretPath, "projects/") && strings.Contains(secretPath, "/versions/") {
		return secretPath, nil
	}
	if strings.HasPrefix(secretPath, "projects/") && strings.Contains(secretPath, "/secrets/") {
		return secretPath + "/versions/latest", nil
	}

	if projectID == "" {
		return "", ErrNoProject
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, path.Base(secretPath)), nil
}

// Close closes the Secret Manager client
func (c *SecretManagerClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Token fetches secretPath through f and closes f afterwards.
func Token(ctx context.Context, f Fetcher, secretPath string) (token string, err error) {
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close secret client: %w", cerr)
		}
	}()

	token, err = f.FetchSecret(ctx, secretPath)
	if err != nil {
		return "", fmt.Errorf("fetch token secret: %w", err)
	}
	return token, nil
}

package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretVersionName expands a bare secret name to its latest version
// resource. Full resource names are returned unchanged.
func SecretVersionName(project, name string) (string, error) {
	if strings.HasPrefix(name, "projects/") {
		if !strings.Contains(name, "/versions/") {
			name += "/versions/latest"
		}
		return name, nil
	}
	if project == "" {
		return "", errors.New("PROJECT is required to resolve a bare secret name")
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", project, name), nil
}

// AccessSecret reads a secret from Google Secret Manager.
func AccessSecret(ctx context.Context, project, name string) (string, error) {
	resource, err := SecretVersionName(project, name)
	if err != nil {
		return "", err
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: resource})
	if err != nil {
		return "", fmt.Errorf("access %s: %w", resource, err)
	}
	return string(resp.GetPayload().GetData()), nil
}

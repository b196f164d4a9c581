package utils

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ExecuteCommand runs the provided shell command and returns its combined stdout/stderr output as string.
func ExecuteCommand(ctx context.Context, cmd string) (string, error) {
	if cmd == "" {
		return "", fmt.Errorf("command cannot be empty")
	}

	command := exec.CommandContext(ctx, "sh", "-c", cmd)
	output, err := command.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("command execution failed: %w (output: %s)", err, string(output))
	}

	return string(output), nil
}

// ResolveSecret returns a credential from the environment variable envVar or,
// when that is unset, from the output of the secret-store command cmd.
// Returns "" when neither is configured.
func ResolveSecret(ctx context.Context, envVar, cmd string) (string, error) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, nil
		}
	}
	if strings.TrimSpace(cmd) == "" {
		return "", nil
	}
	out, err := ExecuteCommand(ctx, cmd)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(out), nil
}

package gitsource

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"maps-workflow/mapcheck/pkg/config"
)

// AuthProvider supplies the transport credentials for clone and pull.
type AuthProvider interface {
	// Auth returns the transport authentication method, nil for anonymous access.
	Auth() (transport.AuthMethod, error)

	// Type returns the auth type for logging.
	Type() string
}

// TokenAuth authenticates HTTPS remotes with a personal access token.
type TokenAuth struct {
	token string
}

// NewTokenAuth creates a token-based authentication provider.
func NewTokenAuth(token string) *TokenAuth {
	return &TokenAuth{token: token}
}

// Auth returns HTTP basic auth with the token as password.
func (a *TokenAuth) Auth() (transport.AuthMethod, error) {
	if a.token == "" {
		return nil, fmt.Errorf("token cannot be empty")
	}

	return &http.BasicAuth{
		Username: "git", // ignored by token-based hosts
		Password: a.token,
	}, nil
}

// Type returns "token".
func (a *TokenAuth) Type() string {
	return "token"
}

// SSHAuth authenticates with a private key file.
type SSHAuth struct {
	keyPath    string
	passphrase string
}

// NewSSHAuth creates an SSH key provider. passphrase is empty for
// unencrypted keys.
func NewSSHAuth(keyPath, passphrase string) *SSHAuth {
	return &SSHAuth{
		keyPath:    keyPath,
		passphrase: passphrase,
	}
}

// Auth loads the key. Keys readable by group or others are rejected.
func (a *SSHAuth) Auth() (transport.AuthMethod, error) {
	if a.keyPath == "" {
		return nil, fmt.Errorf("ssh key path cannot be empty")
	}

	info, err := os.Stat(a.keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access SSH key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0o077 != 0 {
		return nil, fmt.Errorf("SSH key file permissions too open (%o), should be 0600", mode)
	}

	auth, err := ssh.NewPublicKeysFromFile("git", a.keyPath, a.passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key: %w", err)
	}
	return auth, nil
}

// Type returns "ssh".
func (a *SSHAuth) Type() string {
	return "ssh"
}

// NoAuth is used for public repositories and local paths.
type NoAuth struct{}

// Auth returns nil.
func (NoAuth) Auth() (transport.AuthMethod, error) {
	return nil, nil
}

// Type returns "none".
func (NoAuth) Type() string {
	return "none"
}

// NewAuthProvider creates the provider named by cfg.Type.
func NewAuthProvider(cfg *config.GitAuthConfig) (AuthProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("auth config cannot be nil")
	}

	switch cfg.Type {
	case "token":
		if cfg.Token == "" {
			return nil, fmt.Errorf("token auth requires non-empty token")
		}
		return NewTokenAuth(cfg.Token), nil

	case "ssh":
		if cfg.SSHKeyPath == "" {
			return nil, fmt.Errorf("ssh auth requires ssh_key_path")
		}
		return NewSSHAuth(cfg.SSHKeyPath, cfg.SSHKeyPassphrase), nil

	case "none", "":
		return NoAuth{}, nil

	default:
		return nil, fmt.Errorf("unknown auth type: %s", cfg.Type)
	}
}

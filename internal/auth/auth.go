// Package auth obtains a bearer credential from the backend's /token endpoint.
package auth

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/mmcdole/cinelist/internal/domain"
)

const (
	authTimeout = 30 * time.Second
	tokenPath   = "/token"
)

// tokenResponse is the backend's OAuth2 password-grant answer
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// errorResponse is the backend's HTTPException body
type errorResponse struct {
	Detail string `json:"detail"`
}

// Flow implements username/password login against the backend
type Flow struct {
	baseURL    string
	logger     *slog.Logger
	httpClient *http.Client

	in           io.Reader
	out          io.Writer
	readPassword func() (string, error)
}

// NewFlow creates a login flow that prompts on the terminal
func NewFlow(baseURL string, logger *slog.Logger) *Flow {
	if logger == nil {
		logger = slog.Default()
	}
	return &Flow{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		httpClient: &http.Client{
			Timeout: authTimeout,
		},
		in:           os.Stdin,
		out:          os.Stdout,
		readPassword: readTerminalPassword,
	}
}

func readTerminalPassword() (string, error) {
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Run prompts for credentials and logs in. An empty username reuses the
// one given, if any.
func (f *Flow) Run(ctx context.Context, username string) (*domain.AuthResult, error) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "Cinelist Login")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━━")

	if username == "" {
		fmt.Fprint(f.out, "Username: ")
		line, err := bufio.NewReader(f.in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	// Hidden input
	fmt.Fprint(f.out, "Password: ")
	password, err := f.readPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(f.out)

	result, err := f.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(f.out, "Logged in as %s\n", result.Username)
	return result, nil
}

// Login exchanges a username and password for a bearer token
func (f *Flow) Login(ctx context.Context, username, password string) (*domain.AuthResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, domain.Validationf("username and password are required")
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error("login request failed", "error", err)
		return nil, &domain.RemoteError{Endpoint: tokenPath, Message: err.Error(), Err: domain.ErrUnreachable}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RemoteError{Endpoint: tokenPath, Message: err.Error(), Err: domain.ErrUnreachable}
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		msg := strings.TrimSpace(string(body))
		if json.Unmarshal(body, &e) == nil && e.Detail != "" {
			msg = e.Detail
		}
		sentinel := domain.ErrServerError
		if resp.StatusCode == http.StatusUnauthorized {
			sentinel = domain.ErrUnauthorized
		}
		f.logger.Warn("login rejected", "status", resp.StatusCode, "username", username)
		return nil, &domain.RemoteError{StatusCode: resp.StatusCode, Endpoint: tokenPath, Message: msg, Err: sentinel}
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, &domain.RemoteError{StatusCode: resp.StatusCode, Endpoint: tokenPath, Message: "empty access token", Err: domain.ErrServerError}
	}
	if tok.TokenType != "" && !strings.EqualFold(tok.TokenType, "bearer") {
		return nil, &domain.RemoteError{StatusCode: resp.StatusCode, Endpoint: tokenPath, Message: "unsupported token type " + tok.TokenType, Err: domain.ErrServerError}
	}

	f.logger.Info("logged in", "username", username)
	return &domain.AuthResult{Token: tok.AccessToken, Username: username}, nil
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"roombook/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the backend session cookie",
	}

	cmd.AddCommand(sessionSetCmd())
	cmd.AddCommand(sessionStatusCmd())
	cmd.AddCommand(sessionClearCmd())
	return cmd
}

func sessionSetCmd() *cobra.Command {
	var cookie string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the session cookie copied from a signed-in browser",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cookie == "" {
				value, err := readSecret("Session cookie: ")
				if err != nil {
					return err
				}
				cookie = value
			}
			cookie = strings.TrimPrefix(strings.TrimSpace(cookie), "session=")
			if cookie == "" {
				return fmt.Errorf("session cookie is required")
			}

			client.SessionCookie = cookie
			user, err := client.CurrentUser(context.Background())
			if err != nil {
				return fmt.Errorf("session rejected: %w", err)
			}

			path, err := saveSessionCookie(cookie)
			if err != nil {
				return err
			}
			fmt.Printf("Signed in as %s. Saved to %s.\n", user.Email, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&cookie, "cookie", "", "Cookie value (prompted when omitted)")
	return cmd
}

func sessionStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.SessionCookie == "" {
				fmt.Println("No session stored. Run 'roombook session set'.")
				return nil
			}
			user, err := client.CurrentUser(context.Background())
			if err != nil {
				fmt.Printf("Session stored but not accepted: %v\n", err)
				return nil
			}
			fmt.Printf("Session valid for %s (%s).\n", user.Email, user.Role)
			return nil
		},
	}
	return cmd
}

func sessionClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored session cookie",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := saveSessionCookie(""); err != nil {
				return err
			}
			fmt.Println("Session cleared.")
			return nil
		},
	}
	return cmd
}

func readSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		bytes, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}
	value, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// saveSessionCookie rewrites the config file with the new cookie and keeps the
// other keys.
func saveSessionCookie(cookie string) (string, error) {
	path := configFile
	if path == "" {
		var err error
		path, err = storage.ConfigPath()
		if err != nil {
			return "", err
		}
	}
	v, err := newViper(path)
	if err != nil {
		return "", err
	}
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("read config: %w", err)
	}
	v.Set("session_cookie", cookie)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

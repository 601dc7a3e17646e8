package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"monthcal/internal/auth"
	"monthcal/internal/config"
)

// runHashPassword handles the hash-password subcommand. Without -config it
// prints the Argon2id hash; with -config it stores the credentials in the
// config file's basic_auth section.
func runHashPassword(args []string) int {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	configPath := fs.String("config", "", "Write basic_auth into this config file instead of printing the hash")
	username := fs.String("user", "", "Basic auth username (required with -config)")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: monthcal hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Hashes a password with Argon2id for basic_auth.password.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)

	if *configPath != "" && *username == "" {
		fmt.Fprintf(os.Stderr, "-user is required with -config\n")
		return 2
	}

	in := bufio.NewReader(os.Stdin)
	password, err := readSecret(in, "Enter password:   ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		return 1
	}
	confirm, err := readSecret(in, "Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password confirmation: %v\n", err)
		return 1
	}
	if password == "" {
		fmt.Fprintf(os.Stderr, "Password cannot be empty\n")
		return 1
	}
	if password != confirm {
		fmt.Fprintf(os.Stderr, "Passwords do not match\n")
		return 1
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *configPath == "" {
		fmt.Println(hash)
		return 0
	}

	if err := storeCredentials(*configPath, *username, hash); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "basic_auth updated in %s\n", *configPath)
	return 0
}

// storeCredentials loads (or creates) the config at path and saves it with
// the given basic auth credentials.
func storeCredentials(path, username, hash string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg.BasicAuth = &config.BasicAuthConfig{Username: username, Password: hash}
	return cfg.Save(path)
}

// readSecret reads one line without echo when stdin is a terminal, and a
// plain line otherwise (e.g. when piped).
func readSecret(in *bufio.Reader, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

package commands

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// HashPassword handles the hash-password subcommand. It prompts for a
// password (masked on a terminal, one line per prompt when piped) and prints
// a bcrypt hash suitable for basic_auth.password_hash.
func HashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ContinueOnError)
	cost := fs.Int("cost", bcrypt.DefaultCost, "bcrypt cost")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: holocal hash-password [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Prints a bcrypt hash for the basic_auth.password_hash config field.\n\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	var read func(prompt string) (string, error)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		read = func(prompt string) (string, error) {
			fmt.Fprint(os.Stderr, prompt)
			b, err := term.ReadPassword(fd)
			fmt.Fprintln(os.Stderr)
			return string(b), err
		}
	} else {
		read = lineReader(os.Stdin)
	}

	hash, err := promptHash(read, *cost)
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}

// lineReader reads one line per prompt from r, ignoring the prompt.
func lineReader(r io.Reader) func(string) (string, error) {
	sc := bufio.NewScanner(r)
	return func(string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", io.ErrUnexpectedEOF
		}
		return strings.TrimRight(sc.Text(), "\r"), nil
	}
}

// promptHash asks for the password twice and returns its bcrypt hash.
func promptHash(read func(prompt string) (string, error), cost int) (string, error) {
	password, err := read("Enter password:   ")
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	confirm, err := read("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("reading password confirmation: %w", err)
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

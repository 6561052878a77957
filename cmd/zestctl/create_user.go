package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/and161185/zest/internal/model"
)

// readPassword is swapped out in tests.
var readPassword = term.ReadPassword

func promptPassword(w io.Writer, prompt string, fd int) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func createUser(ctx context.Context, auth registrar, args []string, in *os.File, w io.Writer) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "account email")
	name := fs.String("name", "", "full name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *name == "" {
		return errors.New("-email and -name are required")
	}

	fd := int(in.Fd())
	pw, err := promptPassword(w, "Password: ", fd)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer wipe(pw)
	again, err := promptPassword(w, "Repeat password: ", fd)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	defer wipe(again)
	if subtle.ConstantTimeCompare(pw, again) != 1 {
		return errors.New("passwords do not match")
	}

	u, err := auth.Register(ctx, model.SignUpInput{FullName: *name, Email: *email, Password: string(pw)})
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "created %s (%s)\n", u.Email, u.ID)
	return nil
}

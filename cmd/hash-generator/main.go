// Command hash-generator prints Argon2id digests for the given passwords in
// the format stored in users.password. It is used to prepare seed data.
//
//	hash-generator <password>...
//
// With no arguments, passwords are read from stdin, one per line.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/schoolmgmt/school-api/internal/service/auth"
)

type hasher interface {
	Hash(password string) (string, error)
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, auth.NewArgon2Hasher()))
}

func run(args []string, in io.Reader, out io.Writer, h hasher) int {
	passwords := args
	if len(passwords) == 0 {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			if line := scanner.Text(); line != "" {
				passwords = append(passwords, line)
			}
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(out, "Error reading passwords: %v\n", err)
			return 1
		}
	}
	if len(passwords) == 0 {
		fmt.Fprintln(out, "Usage: hash-generator <password>...")
		return 1
	}

	code := 0
	for i, password := range passwords {
		digest, err := h.Hash(password)
		if err != nil {
			// The password itself is never echoed.
			fmt.Fprintf(out, "Error hashing password #%d: %v\n", i+1, err)
			code = 1
			continue
		}
		fmt.Fprintln(out, digest)
	}
	return code
}

package main

import (
	"context"
	"errors"
	"os"
	"strings"

	"recycle/internal/cli"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	if err := cli.ExecuteHistory(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) || !exitErr.Silent {
			msg := strings.Join(strings.Fields(err.Error()), " ")
			_, _ = os.Stderr.WriteString("recycle-history: " + msg + "\n")
		}
		code := 1
		if ec, ok := err.(exitCoder); ok {
			if c := ec.ExitCode(); c != 0 {
				code = c
			}
		}
		os.Exit(code)
	}
}

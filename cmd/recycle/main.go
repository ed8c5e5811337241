package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"recycle/internal/cli"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(report(err))
	}
}

// report prints a short, single-line error to stderr unless it was already logged,
// and returns the exit status.
func report(err error) int {
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Silent {
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString("recycle: " + msg + "\n")
	}
	code := 1
	if ec, ok := err.(exitCoder); ok {
		if c := ec.ExitCode(); c != 0 {
			code = c
		}
	}
	return code
}

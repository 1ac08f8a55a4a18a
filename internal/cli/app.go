// Package cli implements slothctl, the operator tool for preparing server
// secrets and producing wallet signatures for development sign-ins.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrUsage      = errors.New("usage")
	ErrEmptyInput = errors.New("empty input")
)

const usage = `usage: slothctl <command> [args]

commands:
  keygen [-passphrase]              print a 64-hex encryption key
  message <nonce>                   print the sign-in message for nonce
  sign <nonce>                      sign the sign-in message with a private key
  verify <address> <signature> <nonce>
                                    check a wallet signature
`

type App struct {
	reader *bufio.Reader
	out    io.Writer
	fd     int
}

// NewApp reads prompts from in and writes results to out. Secret prompts
// read from the terminal fd without echo.
func NewApp(in io.Reader, out io.Writer, fd int) *App {
	return &App{reader: bufio.NewReader(in), out: out, fd: fd}
}

// NewStdApp is an App on the process stdio.
func NewStdApp() *App {
	return NewApp(os.Stdin, os.Stdout, int(os.Stdin.Fd()))
}

// Run dispatches args[0] to its command.
func (app *App) Run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(app.out, usage)
		return ErrUsage
	}

	var err error
	switch args[0] {
	case "keygen":
		err = app.keygen(args[1:])
	case "message":
		err = app.message(args[1:])
	case "sign":
		err = app.sign(args[1:])
	case "verify":
		err = app.verify(args[1:])
	case "help", "-h", "--help":
		fmt.Fprint(app.out, usage)
		return nil
	default:
		err = fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}

	if errors.Is(err, ErrUsage) {
		fmt.Fprint(app.out, usage)
	}
	return err
}

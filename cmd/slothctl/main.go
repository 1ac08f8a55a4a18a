package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/slothapp/internal/cli"
)

func main() {
	if err := cli.NewStdApp().Run(os.Args[1:]); err != nil {
		if !errors.Is(err, cli.ErrUsage) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

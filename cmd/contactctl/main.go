package main

import (
	"fmt"
	"os"

	"github.com/muhammadheryan/contact-manager/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}

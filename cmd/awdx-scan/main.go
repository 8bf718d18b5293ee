package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pxkundu/awdx/cmd/awdx-scan/commands"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}
	var exitErr *commands.ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "awdx-scan: %v\n", exitErr.Err)
		}
		os.Exit(exitErr.Code)
	}
	fmt.Fprintf(os.Stderr, "awdx-scan: %v\n", err)
	os.Exit(1)
}

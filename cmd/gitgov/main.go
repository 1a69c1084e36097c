package main

import (
	"fmt"
	"os"

	"github.com/gitgovernance/gitgovernance/internal/ggerr"
)

func main() {
	err := Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "gitgov:", err)
	}
	os.Exit(ggerr.ExitCode(err))
}

package main

import (
	"os"

	"github.com/learningequality/kolibri-server-ctl/cmd"
	"github.com/learningequality/kolibri-server-ctl/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}

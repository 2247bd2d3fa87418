package main

import (
	"fmt"
	"os"

	"plugforge.dev/cli/internal/cli"
)

func main() {
	container, err := cli.NewContainer(os.Getenv("PLUGFORGE_CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	cli.Execute(container)
}

package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := buildRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

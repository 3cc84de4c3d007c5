package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := execute(context.Background())
	switch {
	case err == nil:
		return
	case errors.Is(err, errAborted):
		fmt.Fprintf(os.Stderr, "Aborted: %v\n", err)
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}

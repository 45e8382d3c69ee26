package main

import (
	"fmt"
	"os"

	"careroster/internal/app/server"
)

func main() {
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "careroster: %v\n", err)
		os.Exit(1)
	}
}

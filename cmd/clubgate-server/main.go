package main

import (
	"os"

	"github.com/champions-academy/clubgate/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

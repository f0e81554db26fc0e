package main

import (
	"os"

	"github.com/sandeepkv93/taskmaster/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

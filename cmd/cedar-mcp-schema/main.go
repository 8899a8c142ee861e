package main

import (
	"os"

	"github.com/cedar-policy/cedar-for-agents-sub000/cmd"
)

func main() {
	cmd.Run(os.Args[1:])
}

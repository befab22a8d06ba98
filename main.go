package main

import (
	"github.com/neo/rapbattle_backend/cmd"
)

func main() {
	cmd.Execute()
}

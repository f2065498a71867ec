package main

import (
	"github.com/chasedut/chatter/internal/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/jscompat/jscompat/cmd"
)

func main() {
	cmd.Execute()
}

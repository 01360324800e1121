package main

import (
	"github.com/ColonelBlimp/morsetap/cmd"
	"github.com/ColonelBlimp/morsetap/internal/recovery"
)

func main() {
	defer recovery.HandlePanic()
	cmd.Execute()
}

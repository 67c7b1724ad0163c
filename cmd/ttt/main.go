package main

import "github.com/oxgrid/tictactoe/internal/cli"

func main() {
	cli.Execute()
}

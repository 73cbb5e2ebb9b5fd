package main

import "strafenkasse/internal/cli"

func main() {
	cli.Execute()
}

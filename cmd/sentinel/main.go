package main

import "github.com/hellybrine/terraforms/internal/cli"

func main() {
	cli.Execute()
}

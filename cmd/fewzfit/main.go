package main

import "github.com/HamletTheHamster/fewzfit/internal/cli"

func main() {
	cli.Execute()
}

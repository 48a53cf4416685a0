package main

import "github.com/masoud-shayan/northwind/internal/interfaces/cli"

func main() {
	cli.Execute()
}

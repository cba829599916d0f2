package main

import "github.com/aalvaropc/topcontainers/internal/cli"

func main() {
	cli.Execute()
}

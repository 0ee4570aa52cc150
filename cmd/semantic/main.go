package main

import "github.com/mvp-joe/semantic/internal/cli"

func main() {
	cli.Execute()
}

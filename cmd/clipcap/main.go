package main

import "github.com/tavm/clipcap/internal/cli"

func main() {
	cli.Main()
}

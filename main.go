package main

import "github.com/shaharia-lab/fedintake/cmd"

func main() {
	cmd.Execute()
}

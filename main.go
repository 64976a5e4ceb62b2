package main

import "github.com/nethalo/indexwright/cmd"

func main() {
	cmd.Execute()
}

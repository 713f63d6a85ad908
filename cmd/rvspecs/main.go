package main

import "github.com/thesavant42/rvspecs/cmd/rvspecs/cmd"

func main() {
	cmd.Execute()
}

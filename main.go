package main

import "github.com/nextlevelbuilder/carelay/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/KaramelBytes/tabprofile/cmd"

func main() {
	cmd.Execute()
}

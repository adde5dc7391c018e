package main

import "github.com/KaramelBytes/csvdash/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/KaramelBytes/profile_data/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/Gaoz-1224/AgriChatBot/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/xiaoyuanzhu-com/webhook-chat/cmd"

func main() {
	cmd.Execute()
}

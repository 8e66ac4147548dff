package main

import "github.com/shouni/go-ad-exact/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/seo-optimizer/tagscope/cmd"

func main() {
	cmd.Execute()
}

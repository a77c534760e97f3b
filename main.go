package main

import "github.com/lioia/corpus-pagerank/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/cockroachdb/rewritecheck/cmd"

func main() {
	cmd.Execute()
}

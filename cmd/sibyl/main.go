// sibyl — trace viewer for AI agent call graphs.
package main

import "github.com/sibylscope/sibyl/internal/cli"

func main() {
	cli.Execute()
}

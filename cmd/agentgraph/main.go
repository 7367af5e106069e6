// Command agentgraph runs the demo graphs built with the agentgraph packages.
package main

func main() {
	Execute()
}

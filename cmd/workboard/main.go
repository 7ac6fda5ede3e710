// Command workboard runs the workboard API server and its maintenance tasks.
package main

func main() {
	Execute()
}

// Harava - Cloud Resource Export Engine
// List. Describe. Emit.
package main

func main() {
	Execute()
}

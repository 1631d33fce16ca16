// Command comptactl runs maintenance tasks against the compta database.
package main

func main() {
	Execute()
}

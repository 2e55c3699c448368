package main

import "github.com/robomesh/swarmlearn/examples"

func main() {
	examples.NavigationQLearning()
}

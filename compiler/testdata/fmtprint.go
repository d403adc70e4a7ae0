package main

import "fmt"

func main() {
	fmt.Print(1, 2)
	fmt.Print("\n")
	fmt.Print("a", 1, 2, "b\n")
	fmt.Print(true, false, "!", 3, "\n")
	fmt.Println("x", 1, true)
	fmt.Println()
}

package main

import "fmt"

func check(n int) bool {
	fmt.Print("check ", n, "\n")
	return n > 0
}

func main() {
	a := check(0) && check(1)
	b := check(2) || check(3)
	fmt.Println(a, b, !a)

	x := 17
	fmt.Println(x/5, x%5, -x/5, -x%5)
	x *= 2
	x -= 4
	fmt.Println(x, 5000000000*2)
}

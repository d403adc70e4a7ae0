package main

import "fmt"

func fib(n int) int {
	if n < 2 {
		return n
	}
	return fib(n-1) + fib(n-2)
}

func sum6(a int, b int, c int, d int, e int, f int) int {
	return a + 2*b + 3*c + 4*d + 5*e + 6*f
}

func greet(name string, times int) {
	for i := 0; i < times; i++ {
		fmt.Println("hello", name)
	}
}

func main() {
	for i := 0; i < 10; i++ {
		fmt.Print(fib(i), " ")
	}
	fmt.Println()
	fmt.Println("fib(20) =", fib(20))
	fmt.Println(sum6(1, 1, 1, 1, 1, 1))
	greet("gopher", 2)
}

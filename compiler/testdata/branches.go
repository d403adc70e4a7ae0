package main

func sign(x int) int {
	if x < 0 {
		return -1
	} else if x == 0 {
		return 0
	}
	return 1
}

func main() {
	x := 3
	if x > 2 {
		println("big")
	} else {
		println("small")
	}
	println(sign(-5), sign(0), sign(7))
}

package main

func main() {
	println(1 + 2*3)
	println((1+2)*3, 10-4-3, 2*3 > 5 == true)
}

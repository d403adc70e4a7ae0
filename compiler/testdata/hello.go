package main

func main() {
	print("Hello, World!")
}

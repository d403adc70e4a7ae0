package main

func main() {
	x := 1
	{
		x := 2
		x++
		println(x)
	}
	if x := 10; x > 5 {
		println(x)
	}
	println(x)
}

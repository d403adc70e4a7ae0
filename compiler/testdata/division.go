package main

func main() {
	lo := -9223372036854775807 - 1
	d := -1
	println(lo/d, lo%d)
	println(7/d, 7%d)
	x := 100
	x /= d
	println(x)
	println(-7/2, -7%2, 7/-2, 7%-2)
}
